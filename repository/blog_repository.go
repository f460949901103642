package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sosuo3773/openlab-mini/models"
)

// ErrPostNotFound is returned when no post matches the requested id.
var ErrPostNotFound = errors.New("post not found")

// newestFirst orders posts by date with the id as tie breaker. The column is
// quoted through clause because "date" is a keyword in every supported dialect.
var newestFirst = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "date"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

// BlogRepository is the data access layer for posts and comments.
type BlogRepository interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListPostsByCategory(ctx context.Context, name string) ([]models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CreatePost(ctx context.Context, title, category, content string) (*models.Post, error)
	CreateComment(ctx context.Context, postID uint, parentID *int64, content string) (*models.Comment, error)
	Ping(ctx context.Context) error
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository returns a BlogRepository backed by gorm.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

// ListPosts returns every post, newest first.
func (r *blogRepository) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Clauses(newestFirst).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListCategories returns the distinct categories in use.
func (r *blogRepository) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListPostsByCategory returns posts whose category equals name exactly,
// newest first. An unknown category yields an empty slice.
func (r *blogRepository) ListPostsByCategory(ctx context.Context, name string) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Where("category = ?", name).
		Clauses(newestFirst).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts in category %q: %w", name, err)
	}
	return posts, nil
}

func (r *blogRepository) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrPostNotFound, id)
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, nil
}

// ListComments returns the comments of a post in insertion order. Threads are
// not assembled here.
func (r *blogRepository) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

func (r *blogRepository) CreatePost(ctx context.Context, title, category, content string) (*models.Post, error) {
	post := &models.Post{Title: title, Category: category, Content: content}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment stores a comment. parentID is kept as given; it is not
// checked against existing comments.
func (r *blogRepository) CreateComment(ctx context.Context, postID uint, parentID *int64, content string) (*models.Comment, error) {
	comment := &models.Comment{PostID: postID, ParentID: parentID, Content: content}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment on post %d: %w", postID, err)
	}
	return comment, nil
}

func (r *blogRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

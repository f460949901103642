package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sosuo3773/openlab-mini/config"
	"github.com/Sosuo3773/openlab-mini/models"
	"github.com/Sosuo3773/openlab-mini/repository"
	"github.com/Sosuo3773/openlab-mini/utils"
	"github.com/Sosuo3773/openlab-mini/views"
)

var (
	// ErrMissingField is reported when a required form field is absent.
	ErrMissingField = errors.New("missing required form field")
	// ErrInvalidParentID is reported when parent_id is not an integer.
	ErrInvalidParentID = errors.New("invalid parent_id")
)

// BlogController serves the post and comment pages.
type BlogController struct {
	repo repository.BlogRepository
	site config.SiteConfig
	log  *zap.Logger
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(repo repository.BlogRepository, site config.SiteConfig, log *zap.Logger) *BlogController {
	return &BlogController{repo: repo, site: site, log: log}
}

// Index lists the categories and every post, newest first.
func (b *BlogController) Index(ctx *gin.Context) {
	categories, err := b.repo.ListCategories(ctx.Request.Context())
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	posts, err := b.repo.ListPosts(ctx.Request.Context())
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	b.render(ctx, http.StatusOK, views.Index, views.Page{Categories: categories, Posts: posts})
}

// Category lists the posts of one category. Unknown categories render an
// empty listing.
func (b *BlogController) Category(ctx *gin.Context) {
	name := ctx.Param("name")
	posts, err := b.repo.ListPostsByCategory(ctx.Request.Context(), name)
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	b.render(ctx, http.StatusOK, views.Category, views.Page{Title: name, Category: name, Posts: posts})
}

// ShowPost renders a post with its comment threads.
func (b *BlogController) ShowPost(ctx *gin.Context) {
	post, ok := b.loadPost(ctx)
	if !ok {
		return
	}
	comments, err := b.repo.ListComments(ctx.Request.Context(), post.ID)
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	b.render(ctx, http.StatusOK, views.Post, views.Page{
		Title:    post.Title,
		Post:     post,
		Threads:  models.BuildThreads(comments),
		Comments: len(comments),
	})
}

// CreateComment stores a comment on the post and redirects back to it.
func (b *BlogController) CreateComment(ctx *gin.Context) {
	post, ok := b.loadPost(ctx)
	if !ok {
		return
	}
	fields, err := requireForm(ctx, "content")
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	parentID, err := parseParentID(ctx.PostForm("parent_id"))
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}

	comment, err := b.repo.CreateComment(ctx.Request.Context(), post.ID, parentID, fields["content"])
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	b.log.Info("comment created", zap.Uint("post_id", post.ID), zap.Uint("comment_id", comment.ID))
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
}

// NewPostForm renders the post creation form.
func (b *BlogController) NewPostForm(ctx *gin.Context) {
	b.render(ctx, http.StatusOK, views.NewPost, views.Page{Title: "New post"})
}

// CreatePost stores a post from the creation form and redirects home.
func (b *BlogController) CreatePost(ctx *gin.Context) {
	fields, err := requireForm(ctx, "title", "category", "content")
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	post, err := b.repo.CreatePost(ctx.Request.Context(), fields["title"], fields["category"], fields["content"])
	if err != nil {
		b.fail(ctx, http.StatusInternalServerError, err)
		return
	}
	b.log.Info("post created", zap.Uint("post_id", post.ID), zap.String("category", post.Category))
	ctx.Redirect(http.StatusFound, "/")
}

// Health reports whether the database answers.
func (b *BlogController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := b.repo.Ping(pingCtx); err != nil {
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusServiceUnavailable, utils.CodeDatabaseUnavailable, "database unavailable")
		return
	}
	utils.Success(ctx, gin.H{"status": "ok"})
}

// NotFound answers unknown routes.
func (b *BlogController) NotFound(ctx *gin.Context) {
	b.fail(ctx, http.StatusNotFound, nil)
}

// MethodNotAllowed answers known paths requested with an unsupported method.
func (b *BlogController) MethodNotAllowed(ctx *gin.Context) {
	b.fail(ctx, http.StatusMethodNotAllowed, nil)
}

// loadPost resolves the :id parameter. It answers 404 itself when the id is
// malformed or unknown.
func (b *BlogController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 0)
	if err != nil {
		b.fail(ctx, http.StatusNotFound, nil)
		return nil, false
	}
	post, err := b.repo.GetPost(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			b.fail(ctx, http.StatusNotFound, nil)
			return nil, false
		}
		b.fail(ctx, http.StatusInternalServerError, err)
		return nil, false
	}
	return post, true
}

func (b *BlogController) render(ctx *gin.Context, status int, name string, page views.Page) {
	page.Site = b.site
	ctx.HTML(status, name, page)
}

// fail records err on the context for the access log and renders the
// generic error page.
func (b *BlogController) fail(ctx *gin.Context, status int, err error) {
	if err != nil {
		_ = ctx.Error(err)
	}
	text := http.StatusText(status)
	b.render(ctx, status, views.Error, views.Page{Title: text, Status: status, Message: text})
	ctx.Abort()
}

// requireForm reads form fields that must be present. A present but empty
// value is accepted.
func requireForm(ctx *gin.Context, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := ctx.GetPostForm(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		values[name] = v
	}
	return values, nil
}

// parseParentID turns the optional parent_id field into a nullable id. Any
// integer is accepted as is; it is not checked against existing comments.
func parseParentID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParentID, raw)
	}
	return &id, nil
}

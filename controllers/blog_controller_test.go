package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sosuo3773/openlab-mini/config"
	"github.com/Sosuo3773/openlab-mini/models"
	"github.com/Sosuo3773/openlab-mini/repository"
	"github.com/Sosuo3773/openlab-mini/views"
)

var errDatabaseDown = errors.New("database is down")

type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) ListPosts(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *MockBlogRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

func (m *MockBlogRepository) ListPostsByCategory(ctx context.Context, name string) ([]models.Post, error) {
	args := m.Called(ctx, name)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *MockBlogRepository) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockBlogRepository) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

func (m *MockBlogRepository) CreatePost(ctx context.Context, title, category, content string) (*models.Post, error) {
	args := m.Called(ctx, title, category, content)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockBlogRepository) CreateComment(ctx context.Context, postID uint, parentID *int64, content string) (*models.Comment, error) {
	args := m.Called(ctx, postID, parentID, content)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *MockBlogRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ repository.BlogRepository = (*MockBlogRepository)(nil)

func newTestEngine(t *testing.T, repo repository.BlogRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := views.Load()
	require.NoError(t, err)

	b := NewBlogController(repo, config.SiteConfig{Title: "Test Site"}, zap.NewNop())
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", b.Index)
	r.GET("/category/:name", b.Category)
	r.GET("/post/:id", b.ShowPost)
	r.POST("/post/:id", b.CreateComment)
	r.POST("/new", b.CreatePost)
	r.GET("/health", b.Health)
	return r
}

func serve(r http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndex_DatabaseFailure(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("ListCategories", mock.Anything).Return(nil, errDatabaseDown)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Test Site")
	assert.NotContains(t, w.Body.String(), errDatabaseDown.Error())
	repo.AssertExpectations(t)
}

func TestIndex_RendersPosts(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("ListCategories", mock.Anything).Return([]string{"go"}, nil)
	repo.On("ListPosts", mock.Anything).Return([]models.Post{{ID: 3, Title: "Third", Category: "go"}}, nil)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/post/3"`)
	assert.Contains(t, w.Body.String(), "Third")
	repo.AssertExpectations(t)
}

func TestCategory_DatabaseFailure(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("ListPostsByCategory", mock.Anything, "go").Return(nil, errDatabaseDown)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/category/go", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertExpectations(t)
}

func TestShowPost_LookupFailureIsNotA404(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("GetPost", mock.Anything, uint(5)).Return(nil, errDatabaseDown)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/post/5", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertExpectations(t)
}

func TestShowPost_NotFound(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("GetPost", mock.Anything, uint(5)).Return(nil, repository.ErrPostNotFound)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/post/5", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything)
}

func TestShowPost_NonNumericIDSkipsRepository(t *testing.T) {
	repo := new(MockBlogRepository)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/post/first", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertNotCalled(t, "GetPost", mock.Anything, mock.Anything)
}

func TestShowPost_RendersThreads(t *testing.T) {
	parent := int64(1)
	repo := new(MockBlogRepository)
	repo.On("GetPost", mock.Anything, uint(2)).Return(&models.Post{ID: 2, Title: "Threaded"}, nil)
	repo.On("ListComments", mock.Anything, uint(2)).Return([]models.Comment{
		{ID: 1, PostID: 2, Content: "parent comment"},
		{ID: 2, PostID: 2, ParentID: &parent, Content: "child comment"},
	}, nil)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/post/2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Comments (2)")
	assert.Contains(t, body, `id="comment-2"`)
	assert.Contains(t, body, `name="parent_id" value="1"`)
	assert.Less(t, strings.Index(body, "parent comment"), strings.Index(body, "child comment"))
}

func TestCreateComment_PassesParent(t *testing.T) {
	parent := int64(9)
	repo := new(MockBlogRepository)
	repo.On("GetPost", mock.Anything, uint(4)).Return(&models.Post{ID: 4}, nil)
	repo.On("CreateComment", mock.Anything, uint(4), &parent, "nested").
		Return(&models.Comment{ID: 10, PostID: 4, ParentID: &parent}, nil)

	w := serve(newTestEngine(t, repo), http.MethodPost, "/post/4", url.Values{"content": {"nested"}, "parent_id": {"9"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/post/4", w.Header().Get("Location"))
	repo.AssertExpectations(t)
}

func TestCreateComment_DatabaseFailure(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("GetPost", mock.Anything, uint(4)).Return(&models.Post{ID: 4}, nil)
	repo.On("CreateComment", mock.Anything, uint(4), (*int64)(nil), "x").Return(nil, errDatabaseDown)

	w := serve(newTestEngine(t, repo), http.MethodPost, "/post/4", url.Values{"content": {"x"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertExpectations(t)
}

func TestCreatePost_DatabaseFailure(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("CreatePost", mock.Anything, "T", "C", "B").Return(nil, errDatabaseDown)

	w := serve(newTestEngine(t, repo), http.MethodPost, "/new", url.Values{"title": {"T"}, "category": {"C"}, "content": {"B"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertExpectations(t)
}

func TestCreatePost_MissingFieldSkipsRepository(t *testing.T) {
	repo := new(MockBlogRepository)

	w := serve(newTestEngine(t, repo), http.MethodPost, "/new", url.Values{"title": {"T"}, "content": {"B"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHealth_DatabaseDown(t *testing.T) {
	repo := new(MockBlogRepository)
	repo.On("Ping", mock.Anything).Return(errDatabaseDown)

	w := serve(newTestEngine(t, repo), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"code":50300,"message":"database unavailable"}`, w.Body.String())
}

func TestParseParentID(t *testing.T) {
	id, err := parseParentID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = parseParentID("12")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(12), *id)

	id, err = parseParentID("-1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(-1), *id)

	for _, raw := range []string{"abc", "1.5", " 7", "99999999999999999999"} {
		_, err = parseParentID(raw)
		assert.ErrorIs(t, err, ErrInvalidParentID, raw)
	}
}

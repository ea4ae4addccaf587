package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/application/container"
	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/database/dbtest"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	contentrepo "github.com/Diampra/octopus-server/internal/infrastructure/persistence/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
	"github.com/Diampra/octopus-server/internal/presentation/http/routes"
)

const (
	adminEmail  = "admin@example.com"
	editorEmail = "editor@example.com"
	password    = "correct-horse-battery"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	c      *container.Container
	store  *storage.MemoryStore
	posts  *contentrepo.PostRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	logger := logging.NewNopLogger()
	store := storage.NewMemoryStore(2, "")

	c := container.NewContainer(container.Dependencies{
		DB:     db,
		Store:  store,
		Logger: logger,
	}, container.Config{
		Auth: services.AuthConfig{
			JWTSecret:  "0123456789abcdef0123456789abcdef",
			SessionTTL: time.Hour,
		},
		Cleanup: services.CleanupOptions{
			StorageOptions:     services.StorageOptions{CallTimeout: time.Second},
			RevalidationWindow: time.Nanosecond,
			Concurrency:        4,
		},
		UploadMaxBytes: 1 << 20,
		Bucket:         "media",
		CookieName:     "octopus_session",
		Version:        "test",
	})

	ctx := context.Background()
	_, err := c.AuthService.CreateUser(ctx, adminEmail, password, true)
	require.NoError(t, err)
	_, err = c.AuthService.CreateUser(ctx, editorEmail, password, false)
	require.NoError(t, err)

	return &testServer{
		t:      t,
		router: routes.SetupRoutes(c),
		c:      c,
		store:  store,
		posts:  contentrepo.NewPostRepository(db, logger),
	}
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(s.t, body.Token)
	return body.Token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedPost(id, slug, image string, published bool) {
	s.t.Helper()
	img := image
	require.NoError(s.t, s.posts.Store(context.Background(), &content.Post{
		ID: id, Title: slug, Slug: slug, ImageURL: &img, Published: published,
	}))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAdminRoutesRejectMissingSession(t *testing.T) {
	s := newTestServer(t)
	s.store.Seed(map[string]int64{"blog/orphan.jpg": 10})

	w := s.do(http.MethodGet, "/admin/storage/audit", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "auth_required", decode[map[string]any](t, w)["code"])

	w = s.do(http.MethodPost, "/admin/storage/delete", "", map[string]any{"files": []string{"blog/orphan.jpg"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/admin/storage/audit", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.True(t, s.store.Has("blog/orphan.jpg"))
	assert.Zero(t, s.store.DeleteCalls())
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	s := newTestServer(t)
	s.store.Seed(map[string]int64{"blog/orphan.jpg": 10})
	token := s.login(editorEmail)

	w := s.do(http.MethodGet, "/admin/storage/audit", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode[map[string]any](t, w)["code"])

	w = s.do(http.MethodPost, "/admin/storage/delete", token, map[string]any{"files": []string{"blog/orphan.jpg"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/admin/blog", token, map[string]any{"title": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.True(t, s.store.Has("blog/orphan.jpg"))
	assert.Zero(t, s.store.DeleteCalls())

	posts, err := s.posts.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(adminEmail)

	w := s.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/admin/storage/audit", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode[map[string]any](t, w)["code"])

	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": adminEmail, "password": password})
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "octopus_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStorageAuditReport(t *testing.T) {
	s := newTestServer(t)
	s.seedPost("p1", "live", "blog/linked.jpg", true)
	s.seedPost("p2", "draft", "blog/gone.jpg", false)
	s.store.Seed(map[string]int64{
		"blog/linked.jpg":  100,
		"media/orphan.png": 250,
		"media/":           0,
	})
	token := s.login(adminEmail)

	w := s.do(http.MethodGet, "/admin/storage/audit", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[admin.AuditReport](t, w)
	assert.Equal(t, []string{"blog/linked.jpg"}, admin.Paths(report.Linked))
	assert.Equal(t, []string{"media/orphan.png"}, admin.Paths(report.Orphan))
	assert.Equal(t, []string{"blog/gone.jpg"}, admin.Paths(report.Missing))
	assert.Equal(t, admin.AuditSummary{Linked: 1, Orphan: 1, Missing: 1, OrphanBytes: 250}, report.Summary)
	require.Len(t, report.Missing[0].Owners, 1)
	assert.Equal(t, "p2", report.Missing[0].Owners[0].ID)
}

func TestStorageAuditIncomplete(t *testing.T) {
	s := newTestServer(t)
	s.store.Seed(map[string]int64{"a.jpg": 1, "b.jpg": 1, "c.jpg": 1})
	s.store.FailListPage(2, errors.New("throttled"))
	token := s.login(adminEmail)

	w := s.do(http.MethodGet, "/admin/storage/audit", token, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "incomplete_audit", body["code"])
	assert.Contains(t, body["failedSources"], "storage")
	assert.NotContains(t, body, "orphan")
}

func TestStorageDelete(t *testing.T) {
	s := newTestServer(t)
	s.seedPost("p1", "live", "blog/linked.jpg", true)
	s.store.Seed(map[string]int64{
		"blog/linked.jpg":  100,
		"media/orphan.png": 250,
	})
	token := s.login(adminEmail)

	w := s.do(http.MethodPost, "/admin/storage/delete", token, map[string]any{
		"files": []string{"media/orphan.png", "blog/linked.jpg", "media/never.png"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	batch := decode[admin.DeleteBatchResult](t, w)
	require.Len(t, batch.Results, 3)
	statuses := make(map[string]admin.DeleteStatus)
	for _, r := range batch.Results {
		statuses[r.File] = r.Status
	}
	assert.Equal(t, admin.DeleteStatusDeleted, statuses["media/orphan.png"])
	assert.Equal(t, admin.DeleteStatusSkippedNowReferenced, statuses["blog/linked.jpg"])
	assert.Equal(t, admin.DeleteStatusSkippedNotFound, statuses["media/never.png"])
	assert.Equal(t, admin.DeleteSummary{Requested: 3, Deleted: 1, Skipped: 2}, batch.Summary)

	assert.False(t, s.store.Has("media/orphan.png"))
	assert.True(t, s.store.Has("blog/linked.jpg"))

	w = s.do(http.MethodPost, "/admin/storage/delete", token, map[string]any{"files": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadToFolder(t *testing.T) {
	s := newTestServer(t)
	token := s.login(adminEmail)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/blog/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode[map[string]string](t, w)
	assert.Regexp(t, `^blog/[0-9a-f-]+\.png$`, body["path"])
	assert.True(t, s.store.Has(body["path"]))
}

func TestPublicContentHidesDrafts(t *testing.T) {
	s := newTestServer(t)
	s.seedPost("p1", "live", "blog/live.jpg", true)
	s.seedPost("p2", "draft", "blog/draft.jpg", false)

	w := s.do(http.MethodGet, "/blogs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Posts []content.Post `json:"posts"`
		Count int            `json:"count"`
	}](t, w)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "live", body.Posts[0].Slug)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/blogs/live", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/blogs/draft", "", nil).Code)

	token := s.login(adminEmail)
	w = s.do(http.MethodGet, "/admin/blogs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["count"])
}

func TestAdminPostCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(adminEmail)

	w := s.do(http.MethodPost, "/admin/blog", token, map[string]any{"title": "Hello World", "published": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[content.Post](t, w)
	assert.Equal(t, "hello-world", created.Slug)
	require.NotEmpty(t, created.ID)

	w = s.do(http.MethodPost, "/admin/blog", token, map[string]any{"title": "Hello World"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/admin/blog/"+created.ID, token, map[string]any{"title": "Hello Again", "slug": "hello-again"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/admin/blog/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello-again", decode[content.Post](t, w).Slug)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/admin/blog/"+created.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/admin/blog/"+created.ID, token, nil).Code)
}

func TestServiceToggleAndCategories(t *testing.T) {
	s := newTestServer(t)
	token := s.login(adminEmail)

	w := s.do(http.MethodPost, "/admin/services", token, map[string]any{
		"title": "Printing", "active": true, "features": []string{" Offset ", "Digital"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc := decode[content.Service](t, w)

	assert.EqualValues(t, 1, decode[map[string]any](t, s.do(http.MethodGet, "/services", "", nil))["count"])

	w = s.do(http.MethodPatch, "/admin/services/"+svc.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[content.Service](t, w).Active)
	assert.EqualValues(t, 0, decode[map[string]any](t, s.do(http.MethodGet, "/services", "", nil))["count"])

	w = s.do(http.MethodPost, "/admin/portfolio/categories", token, map[string]any{"name": "Video"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode[content.Category](t, w)
	assert.Equal(t, content.CategoryKindPortfolio, cat.Kind)

	w = s.do(http.MethodGet, "/portfolio/categories", "", nil)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])
	w = s.do(http.MethodGet, "/categories?kind=blog", "", nil)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["count"])

	// A portfolio category is not reachable through the blog category routes.
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/admin/categories/"+cat.ID, token, nil).Code)
}

func TestHealthAndSystemRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/admin/system/performance", "", nil).Code)

	token := s.login(adminEmail)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/admin/system/performance", token, nil).Code)

	w = s.do(http.MethodPost, "/admin/system/logs/levels", token, map[string]string{"channel": "storage", "level": "DEBUG"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	levels := decode[map[string]string](t, s.do(http.MethodGet, "/admin/system/logs/levels", token, nil))
	assert.Equal(t, "DEBUG", levels["storage"])

	w = s.do(http.MethodPost, "/admin/system/logs/levels", token, map[string]string{"channel": "nope", "level": "DEBUG"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

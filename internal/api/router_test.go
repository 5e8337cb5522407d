package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-posts/config"
	"github.com/d60-Lab/gin-posts/internal/api/handler"
	"github.com/d60-Lab/gin-posts/internal/model"
	"github.com/d60-Lab/gin-posts/internal/repository"
	"github.com/d60-Lab/gin-posts/internal/service"
	"github.com/d60-Lab/gin-posts/pkg/database"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestServerWith(t, config.ServerConfig{Mode: gin.TestMode, Swagger: true})
}

func newTestServerWith(t *testing.T, server config.ServerConfig) *gin.Engine {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "database.db"),
		LogLevel: "silent",
	}}
	db, err := database.InitDB(cfg)
	require.NoError(t, err)

	repo := repository.NewPostRepository(db, database.NewGuard())
	require.NoError(t, repo.InitSchema(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })

	h := handler.NewHandler(service.NewPostService(repo), repo)
	return SetupRouter(h, Options{Server: server})
}

func call(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func listPosts(t *testing.T, r *gin.Engine) []model.Post {
	t.Helper()
	w := call(r, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var posts []model.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	return posts
}

func TestEndToEndScenario(t *testing.T) {
	r := newTestServer(t)

	w := call(r, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = call(r, http.MethodPost, "/posts", `{"title":"A","body":"B"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Body.String())

	w = call(r, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"title":"A","body":"B"}]`, w.Body.String())

	w = call(r, http.MethodDelete, "/posts/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = call(r, http.MethodGet, "/posts", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = call(r, http.MethodDelete, "/posts/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", w.Body.String())
}

func TestCreateAddsExactlyOneRecord(t *testing.T) {
	r := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/posts", fmt.Sprintf(`{"title":"t%d","body":"b%d"}`, i, i)).Code)
	}
	before := listPosts(t, r)

	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/posts", `{"title":"new","body":"post"}`).Code)
	after := listPosts(t, r)

	require.Len(t, after, len(before)+1)
	known := make(map[int64]bool)
	for _, p := range before {
		known[p.ID] = true
	}
	var fresh []model.Post
	for _, p := range after {
		if !known[p.ID] {
			fresh = append(fresh, p)
		}
	}
	require.Len(t, fresh, 1)
	assert.Equal(t, "new", fresh[0].Title)
	assert.Equal(t, "post", fresh[0].Body)
}

func TestDeleteMissingLeavesStoreUnchanged(t *testing.T) {
	r := newTestServer(t)
	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/posts", `{"title":"A","body":"B"}`).Code)
	before := listPosts(t, r)

	w := call(r, http.MethodDelete, "/posts/77", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before, listPosts(t, r))
}

func TestDeletePresentRemovesOnlyThatRecord(t *testing.T) {
	r := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/posts", `{"title":"A","body":"B"}`).Code)
	}

	require.Equal(t, http.StatusOK, call(r, http.MethodDelete, "/posts/2", "").Code)
	posts := listPosts(t, r)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.NotEqual(t, int64(2), p.ID)
	}
}

func TestConcurrentCreatesViaHTTP(t *testing.T) {
	r := newTestServer(t)

	const n = 50
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes <- call(r, http.MethodPost, "/posts", fmt.Sprintf(`{"title":"t%d","body":"b"}`, i)).Code
		}(i)
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		require.Equal(t, http.StatusCreated, code)
	}

	posts := listPosts(t, r)
	require.Len(t, posts, n)
	ids := make(map[int64]struct{}, n)
	for _, p := range posts {
		ids[p.ID] = struct{}{}
	}
	assert.Len(t, ids, n)
}

func TestAmbientRoutes(t *testing.T) {
	r := newTestServer(t)

	w := call(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	call(r, http.MethodGet, "/posts", "")
	w = call(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "posts_db_guard_wait_seconds")
	assert.Contains(t, w.Body.String(), "posts_http_requests_total")

	w = call(r, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/posts/{id}")

	req := httptest.NewRequest(http.MethodGet, "/posts", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGzipOnlyCompressesListing(t *testing.T) {
	r := newTestServerWith(t, config.ServerConfig{Mode: gin.TestMode, Gzip: true})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/posts", `{"title":"A","body":"B"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Zero(t, w.Body.Len())

	w = do(http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"A","body":"B"}]`, string(raw))

	w = do(http.MethodDelete, "/posts/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Zero(t, w.Body.Len())

	w = do(http.MethodDelete, "/posts/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", w.Body.String())

	w = do(http.MethodOptions, "/posts", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

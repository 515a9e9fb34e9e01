package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seungpyo.lee/StudentPortal/pkg/jwt"
	"seungpyo.lee/StudentPortal/pkg/logger"
	"seungpyo.lee/StudentPortal/pkg/metrics"
	"seungpyo.lee/StudentPortal/pkg/middleware"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/model"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/repository"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/service"
)

var (
	jpegBytes    = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	defaultBytes = []byte{0x89, 'P', 'N', 'G', '\r'}
	pngUpload    = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
)

type testEnv struct {
	router *gin.Engine
	dir    string
	tokens jwt.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "42"), jpegBytes, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.png"), defaultBytes, 0o644))

	store, err := repository.NewFileStore(dir)
	require.NoError(t, err)
	svc := service.NewProfileService(store, nil, logger.Nop(), metrics.NewRegistry("test"), service.Options{
		DefaultImage:   "default.png",
		MaxUploadBytes: 64,
	})
	tokens := jwt.NewTokenManagerWithoutRedis("secret")

	r := gin.New()
	NewProfileHandler(svc, logger.Nop(), 64).RegisterRoutes(r, middleware.AuthMiddleware(tokens))
	return &testEnv{router: r, dir: dir, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, studentID uint) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if studentID != 0 {
		token, err := e.tokens.GenerateAccessToken(studentID, "student", time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGetProfileImage(t *testing.T) {
	env := newTestEnv(t)

	t.Run("existing", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/profile/42", nil, 0)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "10", w.Header().Get("Content-Length"))
		assert.Equal(t, jpegBytes, w.Body.Bytes())
	})

	t.Run("missing falls back to default", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/profile/99", nil, 0)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "5", w.Header().Get("Content-Length"))
		assert.Equal(t, defaultBytes, w.Body.Bytes())
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/profile/..", nil, 0)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("hidden upload staging names are rejected", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(env.dir, ".upload-123"), []byte("partial"), 0o644))
		w := env.do(t, http.MethodGet, "/profile/.upload-123", nil, 0)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetProfileImageReadError(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Remove(filepath.Join(env.dir, "default.png")))

	w := env.do(t, http.MethodGet, "/profile/99", nil, 0)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "profile image could not be read")
}

func TestUploadProfileImage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/profile/7", pngUpload, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPut, "/profile/7", pngUpload, 8)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/profile/7", []byte("plain text"), 7)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = env.do(t, http.MethodPut, "/profile/7", bytes.Repeat(pngUpload, 8), 7)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = env.do(t, http.MethodPut, "/profile/7", pngUpload, 7)
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.ProfileImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "7", resp.Identifier)
	assert.Equal(t, "/profile/7", resp.URL)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.EqualValues(t, len(pngUpload), resp.Size)

	w = env.do(t, http.MethodGet, "/profile/7", nil, 0)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngUpload, w.Body.Bytes())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
}

func TestDeleteProfileImage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodDelete, "/profile/42", nil, 7)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/profile/42", nil, 42)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/profile/42", nil, 42)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/profile/42", nil, 0)
	assert.Equal(t, defaultBytes, w.Body.Bytes())
}

func TestGetProfileImageMetadataWithoutRepository(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/profile/42/meta", nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRoutesDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := service.NewProfileService(store, nil, logger.Nop(), nil, service.Options{MaxUploadBytes: 64})
	r := gin.New()
	NewProfileHandler(svc, logger.Nop(), 64).RegisterRoutes(r, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/profile/7", bytes.NewReader(pngUpload)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

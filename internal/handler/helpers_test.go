package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/cache"
	"github.com/reelscore/backend/internal/handler"
	"github.com/reelscore/backend/internal/journal"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/internal/storage"
	"github.com/reelscore/backend/internal/testutil"
	"github.com/reelscore/backend/internal/utils"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key"

// testServer is the full API wired against an in-memory database.
type testServer struct {
	router    *gin.Engine
	journal   *journal.Journal
	uploadDir string
}

func newTestServer(t *testing.T, testDB *testutil.TestDatabase, ratingsCache cache.RatingsCache, limiter *middleware.RateLimiter) *testServer {
	t.Helper()

	dir := t.TempDir()
	j, err := journal.Open(dir + "/moderation.log")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	images, err := storage.NewLocalStorage(dir+"/uploads", 64<<10)
	require.NoError(t, err)

	store := repository.NewStore(testDB.DB)
	authService := service.NewAuthService(store, testJWTSecret, time.Hour, "development")
	ratingService := service.NewRatingService(store, ratingsCache, j)
	movieService := service.NewMovieService(store, ratingsCache, j)
	uploadService := service.NewUploadService(store, images)

	var (
		authLimiter gin.HandlerFunc
		attempts    handler.AttemptResetter
	)
	if limiter != nil {
		authLimiter = limiter.Middleware()
		attempts = limiter
	}

	router := gin.New()
	handler.Routes{
		Auth:        handler.NewAuthHandler(authService, attempts),
		Movies:      handler.NewMovieHandler(movieService, false),
		Ratings:     handler.NewRatingHandler(ratingService, false),
		Admin:       handler.NewAdminHandler(ratingService, false),
		Uploads:     handler.NewUploadHandler(uploadService, 64<<10, false),
		Verify:      authService.VerifyToken,
		AuthLimiter: authLimiter,
		UploadDir:   images.Dir(),
	}.Register(router)

	return &testServer{router: router, journal: j, uploadDir: images.Dir()}
}

func (ts *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

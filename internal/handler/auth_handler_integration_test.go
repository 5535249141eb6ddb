package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/testutil"
	"github.com/reelscore/backend/internal/utils"
	"github.com/reelscore/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// AuthHandlerIntegrationTestSuite defines test suite
type AuthHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	server *testServer
}

// SetupSuite runs before all tests
func (s *AuthHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.server = newTestServer(s.T(), s.testDB, nil, nil)
}

// TearDownSuite runs after all tests
func (s *AuthHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test (clean database)
func (s *AuthHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthHandlerIntegrationTestSuite) TestRegisterSuccess() {
	w := s.server.do(http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "Alice123456",
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)

	response := decode(s.T(), w)
	assert.Equal(s.T(), "User registered successfully", response["message"])

	user := response["user"].(map[string]interface{})
	assert.Equal(s.T(), "alice", user["username"])
	assert.Equal(s.T(), false, user["is_admin"])
	assert.NotContains(s.T(), user, "password_hash")
	assert.NotContains(s.T(), user, "PasswordHash")
}

func (s *AuthHandlerIntegrationTestSuite) TestRegisterDuplicateUsername() {
	testutil.DefaultTestUser(s.T(), s.testDB.DB)

	w := s.server.do(http.MethodPost, "/register", map[string]string{
		"username": "alice",
		"password": "Different123",
	}, "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Equal(s.T(), "Username already exists", decode(s.T(), w)["message"])
}

func (s *AuthHandlerIntegrationTestSuite) TestRegisterInvalidInput() {
	testCases := []struct {
		name     string
		body     interface{}
		expected string
	}{
		{"missing password", map[string]string{"username": "alice"}, "Username and password are required"},
		{"missing username", map[string]string{"password": "Alice123456"}, "Username and password are required"},
		{"wrong types", map[string]int{"username": 1}, "Invalid request body"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.server.do(http.MethodPost, "/register", tc.body, "")

			assert.Equal(s.T(), http.StatusBadRequest, w.Code)
			assert.Equal(s.T(), tc.expected, decode(s.T(), w)["message"])
		})
	}
}

func (s *AuthHandlerIntegrationTestSuite) TestLoginSuccess() {
	alice := testutil.DefaultTestUser(s.T(), s.testDB.DB)

	w := s.server.do(http.MethodPost, "/login", map[string]string{
		"username": "alice",
		"password": "Alice123456",
	}, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)

	response := decode(s.T(), w)
	assert.Equal(s.T(), "Login successful", response["message"])

	token, ok := response["access_token"].(string)
	s.Require().True(ok)
	claims, err := utils.ValidateToken(token, testJWTSecret)
	s.Require().NoError(err)
	assert.Equal(s.T(), alice.ID, claims.UserID)
	assert.Equal(s.T(), "alice", claims.Username)
}

func (s *AuthHandlerIntegrationTestSuite) TestLoginInvalidCredentials() {
	testutil.DefaultTestUser(s.T(), s.testDB.DB)

	for _, body := range []map[string]string{
		{"username": "alice", "password": "WrongPass123"},
		{"username": "nobody", "password": "Alice123456"},
	} {
		w := s.server.do(http.MethodPost, "/login", body, "")

		assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
		assert.Equal(s.T(), "Invalid username or password", decode(s.T(), w)["message"])
	}
}

func (s *AuthHandlerIntegrationTestSuite) TestLoginMalformedBody() {
	w := s.server.do(http.MethodPost, "/login", []string{"alice"}, "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *AuthHandlerIntegrationTestSuite) TestAuthRoutesRateLimited() {
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := middleware.NewRateLimiter(client, middleware.RateLimiterConfig{
		MaxRequests: 2,
		Window:      time.Minute,
		KeyPrefix:   "ratelimit:auth",
	})
	server := newTestServer(s.T(), s.testDB, nil, limiter)

	for i := 0; i < 2; i++ {
		w := server.do(http.MethodPost, "/login", map[string]string{
			"username": fmt.Sprintf("user%d", i),
			"password": "whatever",
		}, "")
		assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	}

	w := server.do(http.MethodPost, "/register", map[string]string{
		"username": "late",
		"password": "Late123456",
	}, "")
	assert.Equal(s.T(), http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(s.T(), w.Header().Get("Retry-After"))

	// Public read routes are not limited.
	assert.Equal(s.T(), http.StatusOK, server.do(http.MethodGet, "/ratings/list", nil, "").Code)
}

func (s *AuthHandlerIntegrationTestSuite) TestSuccessfulLoginResetsAttempts() {
	testutil.DefaultTestUser(s.T(), s.testDB.DB)
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := middleware.NewRateLimiter(client, middleware.RateLimiterConfig{
		MaxRequests: 2,
		Window:      time.Minute,
		KeyPrefix:   "ratelimit:auth",
	})
	server := newTestServer(s.T(), s.testDB, nil, limiter)
	good := map[string]string{"username": "alice", "password": "Alice123456"}
	bad := map[string]string{"username": "alice", "password": "typo"}

	// Each success clears the counter, so more logins than the limit go through.
	assert.Equal(s.T(), http.StatusUnauthorized, server.do(http.MethodPost, "/login", bad, "").Code)
	for i := 0; i < 3; i++ {
		assert.Equal(s.T(), http.StatusOK, server.do(http.MethodPost, "/login", good, "").Code, "login %d", i+1)
	}

	// Failures still count from zero after the last success.
	assert.Equal(s.T(), http.StatusUnauthorized, server.do(http.MethodPost, "/login", bad, "").Code)
	assert.Equal(s.T(), http.StatusUnauthorized, server.do(http.MethodPost, "/login", bad, "").Code)
	assert.Equal(s.T(), http.StatusTooManyRequests, server.do(http.MethodPost, "/login", bad, "").Code)
}

// TestSuite runs all tests in the suite
func TestAuthHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerIntegrationTestSuite))
}

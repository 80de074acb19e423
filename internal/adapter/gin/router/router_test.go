package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"users-api/internal/adapter/db/memory"
	"users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	domain "users-api/internal/domain/user"
	"users-api/internal/usecase/user"
)

// UsersAPITestSuite drives the full HTTP surface over the in-memory store
type UsersAPITestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *UsersAPITestSuite) SetupSuite() {
	logger := zaptest.NewLogger(s.T())
	repo := memory.NewUserRepo(domain.Seed(), logger)
	uc := user.New(repo, logger)
	s.router = SetupRouter(handler.NewUserHandler(uc, logger), nil, logger, Options{
		ServiceName: "users-api",
		EnableReset: true,
	})
}

// SetupTest isolates every test through the reset endpoint
func (s *UsersAPITestSuite) SetupTest() {
	w := s.do(http.MethodPost, "/api/reset", nil)
	s.Require().Equal(http.StatusOK, w.Code)
}

func (s *UsersAPITestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *UsersAPITestSuite) listUsers() []handler.UserResponse {
	w := s.do(http.MethodGet, "/api/users", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var users []handler.UserResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &users))
	return users
}

func (s *UsersAPITestSuite) TestGetUsers() {
	w := s.do(http.MethodGet, "/api/users", nil)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[{"id":1,"name":"Alice","email":"alice@example.com"}]`, w.Body.String())
}

func (s *UsersAPITestSuite) TestGetUsers_EmptyCollectionIsArray() {
	s.Require().Equal(http.StatusOK, s.do(http.MethodDelete, "/api/users/1", nil).Code)

	w := s.do(http.MethodGet, "/api/users", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("[]", w.Body.String())
}

func (s *UsersAPITestSuite) TestGetUser() {
	w := s.do(http.MethodGet, "/api/users/1", nil)
	s.Equal(http.StatusOK, w.Code)

	var u handler.UserResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &u))
	s.Equal("Alice", u.Name)

	w = s.do(http.MethodGet, "/api/users/999", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.NotContains(w.Body.String(), `"name"`)
}

func (s *UsersAPITestSuite) TestCreateUser() {
	w := s.do(http.MethodPost, "/api/users", map[string]string{"name": "Charlie", "email": "charlie@example.com"})
	s.Require().Equal(http.StatusCreated, w.Code)

	var created handler.UserResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal("Charlie", created.Name)
	s.Equal("charlie@example.com", created.Email)
	s.NotEqual(int64(1), created.ID)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(fmt.Sprintf(`{"id":%d,"name":"Charlie","email":"charlie@example.com"}`, created.ID), w.Body.String())
}

func (s *UsersAPITestSuite) TestCreateUser_MissingFields() {
	before := len(s.listUsers())

	w := s.do(http.MethodPost, "/api/users", map[string]string{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/users", map[string]string{"name": "Charlie"})
	s.Equal(http.StatusBadRequest, w.Code)

	s.Len(s.listUsers(), before)
}

func (s *UsersAPITestSuite) TestDeleteUser() {
	w := s.do(http.MethodDelete, "/api/users/1", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"User deleted"}`, w.Body.String())

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/users/1", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/users/1", nil).Code)
}

func (s *UsersAPITestSuite) TestReset_RestoresSeedState() {
	s.do(http.MethodDelete, "/api/users/1", nil)
	for _, name := range []string{"Bob", "Charlie", "Dave"} {
		s.Require().Equal(http.StatusCreated,
			s.do(http.MethodPost, "/api/users", map[string]string{"name": name, "email": name + "@example.com"}).Code)
	}

	w := s.do(http.MethodPost, "/api/reset", nil)
	s.Equal(http.StatusOK, w.Code)

	s.Equal([]handler.UserResponse{{ID: 1, Name: "Alice", Email: "alice@example.com"}}, s.listUsers())

	// resetting twice is the same as resetting once
	s.do(http.MethodPost, "/api/reset", nil)
	s.Equal([]handler.UserResponse{{ID: 1, Name: "Alice", Email: "alice@example.com"}}, s.listUsers())
}

func (s *UsersAPITestSuite) TestHealthAndDocs() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"healthy","service":"users-api"}`, w.Body.String())

	w = s.do(http.MethodGet, SwaggerDocPath, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"/api/users/{id}"`)

	w = s.do(http.MethodGet, "/swagger/index.html", nil)
	s.Equal(http.StatusOK, w.Code)
	// the UI embeds the doc URL as a JS string literal with escaped slashes
	s.Contains(w.Body.String(), strings.ReplaceAll(SwaggerDocPath, "/", `\/`))
}

func (s *UsersAPITestSuite) TestRequestIDHeader() {
	w := s.do(http.MethodGet, "/api/users", nil)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func TestUsersAPITestSuite(t *testing.T) {
	suite.Run(t, new(UsersAPITestSuite))
}

func TestSetupRouter_ResetDisabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	uc := user.New(memory.NewUserRepo(domain.Seed(), logger), logger)
	r := SetupRouter(handler.NewUserHandler(uc, logger), nil, logger, Options{EnableReset: false})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reset", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouter_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zaptest.NewLogger(t)
	uc := user.New(memory.NewUserRepo(domain.Seed(), logger), logger)
	rl := middleware.NewRateLimiter(client, middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstCapacity:     2,
		Enabled:           true,
	}, logger)
	r := SetupRouter(handler.NewUserHandler(uc, logger), rl, logger, Options{})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		codes = append(codes, w.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// health is outside the limited group
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

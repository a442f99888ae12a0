package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookshelf-backend/internal/domains/user/model"
	"bookshelf-backend/internal/domains/user/repository"
	"bookshelf-backend/internal/domains/user/service"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/pkg/jwt"
	"bookshelf-backend/pkg/kv"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type env struct {
	mock   pgxmock.PgxPoolIface
	tokens *jwt.Manager
	store  kv.Store
	router *gin.Engine
}

func setup(t *testing.T) *env {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	tokens := jwt.NewManager("test-secret", time.Hour)
	store := kv.NewMemoryStore()
	h := NewHandler(service.NewService(repository.NewPostgresRepository(mock), tokens, store, bcrypt.MinCost))

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	authed := r.Group("", middleware.Auth(tokens, store))
	authed.GET("/session", h.Session)
	authed.POST("/logout", h.Logout)
	authed.GET("/users/:id", h.Show)

	return &env{mock: mock, tokens: tokens, store: store, router: r}
}

func (e *env) send(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	e := setup(t)

	e.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ada", "ada@example.com", "ada", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(model.Columns).
			AddRow(int64(1), "Ada", "ada@example.com", "ada", "$2a$hash", "admin", nil, now, now))

	w := e.send(http.MethodPost, "/register",
		`{"name":"Ada","email":"ada@example.com","username":"ada","password":"correct horse","password_confirmation":"correct horse"}`, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Data   map[string]any `json:"data"`
		Token  string         `json:"token"`
		Status int            `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin", body.Data["role"])
	assert.NotContains(t, body.Data, "password_hash")
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, 201, body.Status)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := setup(t)

	e.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows(model.Columns))

	w := e.send(http.MethodPost, "/login", `{"email":"ada@example.com","password":"nope"}`, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"message":"The given data was invalid.","errors":{"email":["These credentials do not match our records."]}}`,
		w.Body.String())
}

func TestSessionAndLogout(t *testing.T) {
	e := setup(t)
	token, err := e.tokens.GenerateAccessToken(1, "admin")
	require.NoError(t, err)

	e.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(model.Columns).
			AddRow(int64(1), "Ada", "ada@example.com", "ada", "$2a$hash", "admin", nil, now, now))

	w := e.send(http.MethodGet, "/session", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)

	w = e.send(http.MethodPost, "/logout", "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.send(http.MethodGet, "/session", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShow_OtherUserForbidden(t *testing.T) {
	e := setup(t)
	token, err := e.tokens.GenerateAccessToken(2, "user")
	require.NoError(t, err)

	w := e.send(http.MethodGet, "/users/3", "", token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Permission denial!"}`, w.Body.String())
}

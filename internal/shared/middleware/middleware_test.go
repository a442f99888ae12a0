package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/pkg/jwt"
	"bookshelf-backend/pkg/kv"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, actor.Role)
	})
	return r
}

func call(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	store := kv.NewMemoryStore()
	r := newRouter(Auth(tokens, store))

	token, err := tokens.GenerateAccessToken(3, authz.RoleUser)
	require.NoError(t, err)

	w := call(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", w.Body.String())

	w = call(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthenticated."}`, w.Body.String())

	w = call(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RevokedToken(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	store := kv.NewMemoryStore()
	r := newRouter(Auth(tokens, store))

	token, err := tokens.GenerateAccessToken(3, authz.RoleUser)
	require.NoError(t, err)
	claims, err := tokens.ValidateAccessToken(token)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), jwt.RevocationKey(claims.ID), "1", time.Hour))

	w := call(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	r := newRouter(OptionalAuth(tokens, kv.NewMemoryStore()))

	w := call(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	token, err := tokens.GenerateAccessToken(1, authz.RoleAdmin)
	require.NoError(t, err)
	w = call(r, token)
	assert.Equal(t, "admin", w.Body.String())

	w = call(r, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorize(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	gate := authz.NewRoleGate()
	r := newRouter(OptionalAuth(tokens, kv.NewMemoryStore()), Authorize(gate, authz.Create, authz.Authors))

	userToken, err := tokens.GenerateAccessToken(2, authz.RoleUser)
	require.NoError(t, err)
	adminToken, err := tokens.GenerateAccessToken(1, authz.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)

	w := call(r, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Permission denial!"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, call(r, adminToken).Code)
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := call(r, "")
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestCORS_Preflight(t *testing.T) {
	r := newRouter(CORS(DefaultCORSConfig()))
	r.OPTIONS("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error."}`, w.Body.String())
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelpedia-backend/internal/policy"
	"novelpedia-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *jwt.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Authenticate(tokens))
	handlers := append(extra, func(c *gin.Context) {
		a := Actor(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": a.Authenticated, "id": a.ID.String(), "role": string(a.Role)})
	})
	r.GET("/whoami", handlers...)
	return r
}

func TestAuthenticate_AnonymousWithoutHeader(t *testing.T) {
	r := newRouter(jwt.NewManager("s", time.Minute, time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := jwt.NewManager("s", time.Minute, time.Hour)
	id := uuid.New()
	token, err := tokens.GenerateAccessToken(id.String(), "alice", string(policy.RoleAuthor))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), `"role":"author"`)
}

func TestAuthenticate_RejectsBadToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	newRouter(jwt.NewManager("s", time.Minute, time.Hour)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	tokens := jwt.NewManager("s", time.Minute, time.Hour)
	token, _, err := tokens.GenerateRefreshToken(uuid.NewString())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(jwt.NewManager("s", time.Minute, time.Hour), RequireAuth()).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	tokens := jwt.NewManager("s", time.Minute, time.Hour)
	r := newRouter(tokens, RequireAuth(), AdminMiddleware())

	reader, err := tokens.GenerateAccessToken(uuid.NewString(), "r", string(policy.RoleReader))
	require.NoError(t, err)
	admin, err := tokens.GenerateAccessToken(uuid.NewString(), "a", string(policy.RoleAdmin))
	require.NoError(t, err)

	for token, want := range map[string]int{reader: http.StatusForbidden, admin: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

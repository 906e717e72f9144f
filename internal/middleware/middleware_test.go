package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cajachica/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tm *TokenManager, roles ...model.RoleName) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{tm.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := c.Get(ContextUserID)
		role, _ := c.Get(ContextUserRole)
		c.JSON(http.StatusOK, gin.H{"id": id.(uuid.UUID).String(), "role": role})
	})
	r.GET("/me", handlers...)
	return r
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	token, expiresAt, err := tm.Generate(userID, model.RoleAdminHead)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	gotID, gotRole, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, model.RoleAdminHead, gotRole)
}

func TestParseRejectsBadTokens(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	other := NewTokenManager("other-secret", time.Hour)
	forged, _, err := other.Generate(uuid.New(), model.RoleSuperAdmin)
	require.NoError(t, err)
	_, _, err = tm.Parse(forged)
	assert.Error(t, err)

	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Generate(uuid.New(), model.RoleSuperAdmin)
	require.NoError(t, err)
	_, _, err = tm.Parse(stale)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "visitante",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, _, err = tm.Parse(badRole)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()
	token, _, err := tm.Generate(userID, model.RoleAreaHead)
	require.NoError(t, err)
	router := newRouter(tm)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	router := newRouter(tm, model.RoleSuperAdmin)

	for role, want := range map[model.RoleName]int{
		model.RoleSuperAdmin: http.StatusOK,
		model.RoleAdminHead:  http.StatusForbidden,
	} {
		token, _, err := tm.Generate(uuid.New(), role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusConflict) })

	for _, path := range []string{"/ok", "/bad"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusConflict), entries[1].ContextMap()["status"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

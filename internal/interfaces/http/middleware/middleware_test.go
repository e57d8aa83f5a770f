package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randevu.backend/pkg/jwt"
	"randevu.backend/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		id := c.GetString(RequestIDKey)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, c.Request.Context().Value("request_id"))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// a client-supplied ID is propagated, not replaced
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func authRouter(jwtService *jwt.JWTService) *gin.Engine {
	r := gin.New()
	admin := r.Group("/admin", AuthMiddleware(jwtService), RequireAdmin())
	admin.GET("/stats", func(c *gin.Context) {
		// the claims must be available to downstream handlers
		if userID, ok := GetUserID(c); !ok || userID == uuid.Nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	r := authRouter(jwtService)

	do := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		if authorization != "" {
			req.Header.Set(AuthorizationHeader, authorization)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("Token abc").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("Bearer not.a.jwt").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewJWTService("other-secret", time.Hour)
		token, err := other.GenerateToken(uuid.New(), "a@b.c", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(BearerPrefix+token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewJWTService("test-secret", -time.Minute)
		token, err := expired.GenerateToken(uuid.New(), "a@b.c", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(BearerPrefix+token).Code)
	})

	t.Run("non-admin role", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), "a@b.c", "CUSTOMER")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, do(BearerPrefix+token).Code)
	})

	t.Run("admin token", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), "a@b.c", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, do(BearerPrefix+token).Code)
	})
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	return mr
}

func idempotencyRouter(calls *int) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/verifications/request", IdempotencyMiddleware(), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verifications/request", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_ReplaysSuccess(t *testing.T) {
	setupMiniredis(t)
	calls := 0
	r := idempotencyRouter(&calls)

	first := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Hit"))

	second := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.Equal(t, 1, calls)

	// a different key is a different request
	postWithKey(r, "key-2")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_NoHeaderPassesThrough(t *testing.T) {
	setupMiniredis(t)
	calls := 0
	r := idempotencyRouter(&calls)

	postWithKey(r, "")
	postWithKey(r, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_ConcurrentDuplicateConflicts(t *testing.T) {
	mr := setupMiniredis(t)
	calls := 0
	r := idempotencyRouter(&calls)

	// simulate an in-flight request holding the processing marker
	require.NoError(t, mr.Set("idempotency:/api/v1/verifications/request:key-1", "processing"))

	w := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyMiddleware_ErrorResponsesNotReplayed(t *testing.T) {
	setupMiniredis(t)
	calls := 0
	r := gin.New()
	r.POST("/api/v1/verifications/request", IdempotencyMiddleware(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusTooManyRequests, gin.H{"code": "ERR_COOLDOWN_ACTIVE"})
	})

	first := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusTooManyRequests, first.Code)

	// the failed attempt released the key, so the retry is processed
	second := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_RedisDownPassesThrough(t *testing.T) {
	mr := setupMiniredis(t)
	mr.Close()

	calls := 0
	r := idempotencyRouter(&calls)

	w := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
}

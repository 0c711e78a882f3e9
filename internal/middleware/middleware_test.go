package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestActorMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(ActorMiddleware())
	router.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, ActorFromContext(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-User-ID", "admin-7")
	router.ServeHTTP(w, req)
	assert.Equal(t, "admin-7", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, DefaultActor, w.Body.String())
}

func TestStructuredLoggingMiddleware_InjectsLogger(t *testing.T) {
	base := slog.New(slog.NewJSONHandler(httptest.NewRecorder(), nil))
	router := gin.New()
	router.Use(StructuredLoggingMiddleware(base))

	var fromCtx, fromGin *slog.Logger
	router.GET("/ping", func(c *gin.Context) {
		fromCtx = GetLoggerFromCtx(c.Request.Context())
		fromGin = GetLoggerFromContext(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	require.NotNil(t, fromCtx)
	assert.Same(t, fromCtx, fromGin)
	assert.NotSame(t, slog.Default(), fromCtx)
}

func TestGetLoggerFromCtx_Fallback(t *testing.T) {
	assert.Same(t, slog.Default(), GetLoggerFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRateLimit(t *testing.T) {
	lim, err := NewLimiter("1-M")
	require.NoError(t, err)

	router := gin.New()
	router.Use(RateLimit(lim))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	_, err = NewLimiter("lots")
	assert.Error(t, err)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router
}

func TestRecovery(t *testing.T) {
	router := newRouter(RequestID(), Recovery(), Logger())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"internal_error","message":"Internal server error"}}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	var seen string
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ok", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		assert.Len(t, seen, 26)
		assert.Equal(t, seen, w.Header().Get(REQUEST_ID_HEADER))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(REQUEST_ID_HEADER, "upstream-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "upstream-id", seen)
		assert.Equal(t, "upstream-id", w.Header().Get(REQUEST_ID_HEADER))
	})
}

func TestGetRequestID_NotInstalled(t *testing.T) {
	var seen = "unset"
	router := newRouter()
	router.GET("/id", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.Equal(t, "", seen)
}

func TestSetupCORS(t *testing.T) {
	t.Run("all origins", func(t *testing.T) {
		router := newRouter(SetupCORS(nil))

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "https://example.org")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted origins", func(t *testing.T) {
		router := newRouter(SetupCORS([]string{"https://dashboard.example.org"}))

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "https://dashboard.example.org")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://dashboard.example.org", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "https://evil.example.org")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

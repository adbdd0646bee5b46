package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunavision/backend/internal/logger"
)

func panicRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), mw)
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return router
}

func TestRecoveryVerboseLogsStacktrace(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(true, buf)

	router := panicRouter(Recovery(true))
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")

	out := buf.String()
	assert.Contains(t, out, "PANIC: boom")
	assert.Contains(t, out, "Stacktrace:")
	assert.Contains(t, out, "request_id")
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, "secret-token")
}

func TestRecoveryQuietModeSkipsMetadata(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(true, buf)

	router := panicRouter(Recovery(false))
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	out := buf.String()
	assert.Contains(t, out, "PANIC: boom")
	assert.NotContains(t, out, "Stacktrace:")
}

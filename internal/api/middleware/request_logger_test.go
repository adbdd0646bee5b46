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

func TestRequestLoggerWritesStructuredLine(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(true, buf)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/comuneros", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/comuneros?filtros_and=x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	out := buf.String()
	assert.Contains(t, out, "handled request")
	assert.Contains(t, out, "request_id")
	assert.Contains(t, out, "/comuneros")
	assert.NotContains(t, out, "filtros_and")
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"card-token-proxy/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxRequestID))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestID_HonorsInboundHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-chosen-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "client-chosen-id", w.Header().Get("X-Request-ID"))
}

func TestRequestLogger_EmitsStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("info", &buf)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, small)
	assert.Equal(t, http.StatusOK, w.Code)

	big := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

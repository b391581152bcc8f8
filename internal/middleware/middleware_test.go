package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000, https://mangrove.example.org/"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("listed origin is echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://mangrove.example.org")
		r.ServeHTTP(w, req)

		assert.Equal(t, "https://mangrove.example.org", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("unlisted origin gets no allow header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Headers", "Authorization, X-Trace")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "Authorization, X-Trace", w.Header().Get("Access-Control-Allow-Headers"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.DEBUG, &buf)

	r := gin.New()
	r.Use(RequestLogger(log, DefaultLoggerConfig()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/auth/login", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "hunter2", "handler still sees the original body")
		c.Set("email", "mira@example.org")
		response.Unauthorized(c, "Invalid email or password", "AUTH_FAILED")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"mira@example.org","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "[WARN] [http] POST /auth/login 401")
	assert.Contains(t, out, "user=mira@example.org")
	assert.Contains(t, out, `msg="Invalid email or password"`)
	assert.Contains(t, out, `"password":"********"`)
	assert.NotContains(t, out, "hunter2")
}

func TestHideSensitiveFields(t *testing.T) {
	got := hideSensitiveFields(map[string]interface{}{
		"confirmPassword": "x",
		"nested":          []interface{}{map[string]interface{}{"Token": "t", "title": "mud"}},
	})

	m := got.(map[string]interface{})
	assert.Equal(t, "********", m["confirmPassword"])
	inner := m["nested"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "********", inner["Token"])
	assert.Equal(t, "mud", inner["title"])
}

package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
)

// LoggerConfig controls what the request logger records.
type LoggerConfig struct {
	LogRequestBody bool
	MaxBodySize    int64 // bodies above this are not captured
	SkipPaths      []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogRequestBody: true,
		MaxBodySize:    2048,
		SkipPaths:      []string{"/health", "/metrics"},
	}
}

// RequestLogger writes one line per request to log. Client errors log at
// WARN with the response message, server errors at ERROR. Request bodies
// are logged at DEBUG with credential fields masked.
func RequestLogger(log *logger.Logger, config LoggerConfig) gin.HandlerFunc {
	log = logger.OrDefault(log).With("http")
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method

		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[body too large]"
			} else {
				bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize))
				if err == nil {
					c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
					requestBody = sanitizeBody(bodyBytes, c.GetHeader("Content-Type"))
				}
			}
		}

		writer := &limitedResponseWriter{ResponseWriter: c.Writer, maxSize: config.MaxBodySize}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		line := fmt.Sprintf("%s %s %d %s %s ip=%s", method, path, status,
			time.Since(start).Round(time.Microsecond), formatSize(writer.size), c.ClientIP())
		if email := c.GetString("email"); email != "" {
			line += " user=" + email
		} else if userID := c.GetString("userID"); userID != "" {
			line += " user=" + userID
		}

		switch {
		case status >= 500:
			log.Error("%s msg=%q", line, responseMessage(writer.body.Bytes()))
		case status >= 400:
			log.Warn("%s msg=%q", line, responseMessage(writer.body.Bytes()))
		default:
			log.Info("%s", line)
		}
		if requestBody != "" {
			log.Debug("%s %s body=%s", method, path, requestBody)
		}
	}
}

// limitedResponseWriter keeps up to maxSize bytes of the response.
type limitedResponseWriter struct {
	gin.ResponseWriter
	body    bytes.Buffer
	size    int64
	maxSize int64
}

func (w *limitedResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)

	if w.size+int64(n) <= w.maxSize {
		w.body.Write(b[:n])
	}
	w.size += int64(n)

	return n, err
}

func formatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1fMB", float64(bytes)/(1024*1024))
}

// responseMessage pulls the envelope message out of an error body.
func responseMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
		return envelope.Message
	}
	return truncateString(string(body), 200)
}

func sanitizeBody(body []byte, contentType string) string {
	if strings.Contains(contentType, "application/json") {
		var jsonData interface{}
		if json.Unmarshal(body, &jsonData) == nil {
			if formatted, err := json.Marshal(hideSensitiveFields(jsonData)); err == nil {
				return string(formatted)
			}
		}
		return "[malformed json]"
	}

	return truncateString(string(body), 200)
}

func hideSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitiveField(strings.ToLower(key)) {
				result[key] = "********"
			} else {
				result[key] = hideSensitiveFields(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = hideSensitiveFields(item)
		}
		return result
	default:
		return v
	}
}

// isSensitiveField also matches confirmPassword.
func isSensitiveField(field string) bool {
	for _, s := range []string{"password", "token", "secret", "key", "auth", "credential"} {
		if strings.Contains(field, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

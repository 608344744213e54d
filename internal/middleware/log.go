package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxAuditBody = 2000

// AuditMiddleware records mutations of signed-in users with path and action
// encrypted. It must run after AuthMiddleware.
func AuditMiddleware(st *store.Store, encryptKey string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		user := CurrentUser(c)
		if user == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			if body := redactBody(bodyBytes); body != "" {
				action += " " + body
			}
		}

		encPath, err := util.EncryptString(encryptKey, path)
		if err != nil {
			log.WithError(err).Warn("audit: encrypt path")
			return
		}
		encAction, err := util.EncryptString(encryptKey, action)
		if err != nil {
			log.WithError(err).Warn("audit: encrypt action")
			return
		}

		entry := models.AuditLog{
			UserID:    &user.ID,
			PathEnc:   encPath,
			Method:    c.Request.Method,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := st.CreateAuditLog(c.Request.Context(), &entry); err != nil {
			log.WithError(err).Warn("audit: store entry")
		}
	}
}

const redacted = "********"

var secretKeys = map[string]bool{
	"password":     true,
	"old_password": true,
	"new_password": true,
	"refresh":      true,
	"access":       true,
	"token":        true,
	"secret":       true,
}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	return secretKeys[k] || strings.Contains(k, "password") || strings.HasSuffix(k, "_token")
}

// redactBody masks credential fields. Bodies that are not a single JSON
// object are dropped.
func redactBody(body []byte) string {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil || dec.More() {
		return ""
	}
	if !redactValue(obj) {
		return string(body)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// redactValue masks secret keys in place and reports whether any were found.
func redactValue(v any) bool {
	changed := false
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if isSecretKey(k) {
				t[k] = redacted
				changed = true
				continue
			}
			if redactValue(inner) {
				changed = true
			}
		}
	case []any:
		for _, inner := range t {
			if redactValue(inner) {
				changed = true
			}
		}
	}
	return changed
}

// RequestLogger logs one line per request, plus any errors handlers
// attached with c.Error.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if u := CurrentUser(c); u != nil {
			fields["user_id"] = u.ID.String()
		}
		entry := log.WithFields(fields)

		switch {
		case len(c.Errors) > 0:
			entry.WithError(c.Errors.Last().Err).Error("request failed")
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		default:
			entry.Info("request")
		}
	}
}

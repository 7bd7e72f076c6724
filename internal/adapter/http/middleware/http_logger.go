package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	reqBodyLimit  = 8 * 1024 // 8KB
	respBodyLimit = 8 * 1024 // 8KB

	HeaderRequestID = "X-Request-Id"
	redacted        = "***redacted***"
	truncated       = "...truncated..."
)

// keys compared lowercased; card fields arrive inside payment_details
var sensitiveKeys = map[string]bool{
	"password":      true,
	"password_hash": true,
	"authorization": true,
	"token":         true,
	"secret":        true,
	"cvv":           true,
	"expirydate":    true,
}

// card numbers keep their last four digits so support can match a receipt
var cardKeys = map[string]bool{
	"cardnumber":  true,
	"card_number": true,
}

// cappedWriter tees the response into a bounded buffer.
type cappedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *cappedWriter) Write(b []byte) (int, error) {
	if room := respBodyLimit - w.buf.Len(); room > 0 {
		w.buf.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

func (w *cappedWriter) full() bool { return w.buf.Len() >= respBodyLimit }

func maskCard(v any) any {
	s, ok := v.(string)
	if !ok {
		return redacted
	}
	digits := strings.NewReplacer(" ", "", "-", "").Replace(s)
	if len(digits) <= 4 {
		return redacted
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func scrub(x any) any {
	switch v := x.(type) {
	case map[string]any:
		for k, val := range v {
			switch key := strings.ToLower(k); {
			case sensitiveKeys[key]:
				v[k] = redacted
			case cardKeys[key]:
				v[k] = maskCard(val)
			default:
				v[k] = scrub(val)
			}
		}
	case []any:
		for i := range v {
			v[i] = scrub(v[i])
		}
	}
	return x
}

// redactJSON returns raw with secrets replaced; non-JSON input is returned as is.
func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}
	b, err := json.Marshal(scrub(doc))
	if err != nil {
		return raw
	}
	return b
}

// readCapped reads up to n bytes for logging. When the body is longer, rest
// holds the unread remainder so the handler still sees the whole body.
func readCapped(rc io.ReadCloser, n int) (body []byte, rest io.ReadCloser) {
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, rc, int64(n+1))
	if buf.Len() > n {
		return buf.Bytes(), rc
	}
	_ = rc.Close()
	return buf.Bytes(), nil
}

func restReader(rc io.ReadCloser) io.Reader {
	if rc == nil {
		return bytes.NewReader(nil)
	}
	return rc
}

// captureRequestBody returns the loggable form of a JSON request body and
// puts the original bytes back on the request.
func captureRequestBody(r *http.Request) string {
	if r.Body == nil || !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}
	body, rest := readCapped(r.Body, reqBodyLimit)
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), restReader(rest)))
	if rest != nil {
		// a cut JSON document cannot be redacted
		return truncated
	}
	return string(redactJSON(body))
}

func requestID(c *gin.Context) string {
	id := c.GetHeader(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
		c.Request.Header.Set(HeaderRequestID, id)
	}
	c.Header(HeaderRequestID, id)
	return id
}

// Logging logs one line per request with redacted bodies and stores a
// request-scoped logger in the gin and request contexts.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		l := base.With(
			"req_id", requestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(), // empty when no route matched
			"remote", c.ClientIP(),
		)
		logging.With(c, l)

		reqBody := captureRequestBody(c.Request)
		w := &cappedWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := w.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", w.Size(),
		}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
			resp := string(redactJSON(w.buf.Bytes()))
			if w.full() {
				resp += truncated
			}
			attrs = append(attrs, "resp_body", resp)
		}
		if len(c.Params) > 0 {
			attrs = append(attrs, "params", c.Params)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("http_request", attrs...)
		case status >= http.StatusBadRequest:
			l.Warn("http_request", attrs...)
		default:
			l.Info("http_request", attrs...)
		}
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRedactJSON(t *testing.T) {
	in := `{"customer_name":"Ada","password":"pw","payment_details":{"cardNumber":"4242424242424242","cvv":"123","expiryDate":"12/28"},"items":[{"token":"x","quantity":1}]}`
	var got map[string]any
	require.NoError(t, json.Unmarshal(redactJSON([]byte(in)), &got))

	assert.Equal(t, "Ada", got["customer_name"])
	assert.Equal(t, redacted, got["password"])
	pd := got["payment_details"].(map[string]any)
	assert.Equal(t, "************4242", pd["cardNumber"])
	assert.Equal(t, redacted, pd["cvv"])
	assert.Equal(t, redacted, pd["expiryDate"])
	item := got["items"].([]any)[0].(map[string]any)
	assert.Equal(t, redacted, item["token"])
	assert.EqualValues(t, 1, item["quantity"])

	assert.Equal(t, "not json", string(redactJSON([]byte("not json"))))
	assert.Equal(t, redacted, maskCard(42))
}

func TestReadCapped_KeepsWholeBody(t *testing.T) {
	long := strings.Repeat("a", 50)
	body, rest := readCapped(io.NopCloser(strings.NewReader(long)), 10)
	require.NotNil(t, rest)
	all, err := io.ReadAll(io.MultiReader(bytes.NewReader(body), restReader(rest)))
	require.NoError(t, err)
	assert.Equal(t, long, string(all))

	body, rest = readCapped(io.NopCloser(strings.NewReader("short")), 10)
	assert.Nil(t, rest)
	assert.Equal(t, "short", string(body))
}

func TestLogging_RedactsAndRestoresBody(t *testing.T) {
	var logs bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&logs, nil))

	r := gin.New()
	r.Use(Logging(l))
	var seen map[string]string
	r.POST("/api/login", func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&seen))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"baker","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "hunter2", seen["password"])
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.NotContains(t, logs.String(), "hunter2")
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "/api/login")
}

func TestLogging_KeepsIncomingRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logging(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

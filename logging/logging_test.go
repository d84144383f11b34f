package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})

	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Error("info entry written at warn level")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, out)
	}
	if entry["msg"] != "shown" || entry["key"] != "value" {
		t.Errorf("entry = %v", entry)
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext() returned nil")
	}
	l := New(Config{Output: &bytes.Buffer{}})
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Error("FromContext() did not return stored logger")
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})

	r := gin.New()
	r.Use(RequestLogger(logger))
	var seenID string
	r.GET("/missing", func(c *gin.Context) {
		seenID = RequestID(c.Request.Context())
		FromContext(c.Request.Context()).Info("inside handler")
		c.String(http.StatusNotFound, "nope")
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if seenID == "" || rr.Header().Get(RequestIDHeader) != seenID {
		t.Errorf("request id %q not echoed (header %q)", seenID, rr.Header().Get(RequestIDHeader))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %q", len(lines), buf.String())
	}
	var done map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &done); err != nil {
		t.Fatal(err)
	}
	if done["level"] != "WARN" || done["status"] != float64(404) || done["path"] != "/missing" {
		t.Errorf("completion entry = %v", done)
	}
	if done["request_id"] != seenID {
		t.Errorf("request_id = %v, want %s", done["request_id"], seenID)
	}
}

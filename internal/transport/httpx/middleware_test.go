package httpx_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"blog-go-template/internal/transport/httpx"
)

func TestACLIsAllowed(t *testing.T) {
	acl := httpx.NewACL("localhost", "10.0.0.7")

	tests := []struct {
		addr     string
		expected bool
	}{
		{"127.0.0.1:4242", true},
		{"[::1]:4242", true},
		{"127.0.0.9:1", true},
		{"10.0.0.7:80", true},
		{"10.0.0.8:80", false},
		{"192.0.2.1:1234", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.expected, acl.IsAllowed(tt.addr))
		})
	}

	assert.False(t, httpx.NewACL("10.0.0.7").IsAllowed("127.0.0.1:1"))
}

func TestEngineHealthIsLoopbackOnly(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	r := httpx.NewEngine(log, "test", prometheus.NewRegistry())

	local := httptest.NewRequest(http.MethodGet, "/health", nil)
	local.RemoteAddr = "127.0.0.1:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, local)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Healthy", w.Body.String())

	remote := httptest.NewRequest(http.MethodGet, "/health", nil)
	remote.RemoteAddr = "203.0.113.5:5000"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, remote)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Contains(t, buf.String(), `"msg":"http request"`)
}

func TestEngineServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "blog_test_total", Help: "test"}))
	r := httpx.NewEngine(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), "test", reg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blog_test_total")
}

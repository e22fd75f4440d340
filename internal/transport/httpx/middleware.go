package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessLog logs one record per request after it completes.
func AccessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.Log(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client", c.ClientIP()))
	}
}

// ACL restricts access to a fixed set of client hosts.
type ACL struct {
	allowed  map[string]struct{}
	loopback bool
}

// NewACL creates an ACL for the given hosts. "localhost" admits every loopback address.
func NewACL(hosts ...string) *ACL {
	a := &ACL{allowed: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		if h == "localhost" {
			a.loopback = true
			continue
		}
		a.allowed[h] = struct{}{}
	}
	return a
}

// IsAllowed reports whether a request from remoteAddr may pass.
func (a *ACL) IsAllowed(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if _, ok := a.allowed[host]; ok {
		return true
	}
	ip := net.ParseIP(host)
	return a.loopback && ip != nil && ip.IsLoopback()
}

// Middleware answers 404 to clients outside the ACL, as if the route did not exist.
func (a *ACL) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.IsAllowed(c.Request.RemoteAddr) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}

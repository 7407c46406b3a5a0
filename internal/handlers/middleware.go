package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	uuid2 "github.com/google/uuid"

	"github.com/SAP-F-2025/exam-service/internal/utils"
)

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger, development bool, allowedOrigins []string) {
	// Loopback alias redirect, development only
	if development {
		router.Use(HostNormalizationMiddleware())
	}

	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))
	router.Use(gin.Recovery())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))

	router.Use(SecurityMiddleware())
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid2.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support. Only listed origins are echoed back,
// together with the credentials flag the session cookie needs.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "43200")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// HostNormalizationMiddleware redirects safe requests addressed to 127.0.0.1
// to localhost so the browser keeps a single cookie origin. Scheme, port,
// path and query are preserved; ports 80 and 443 are dropped. Requests with
// a body are never redirected.
func HostNormalizationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			c.Next()
			return
		}

		hostname, port, err := net.SplitHostPort(c.Request.Host)
		if err != nil {
			hostname, port = c.Request.Host, ""
		}
		if hostname != "127.0.0.1" {
			c.Next()
			return
		}

		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		netloc := "localhost"
		if port != "" && port != "80" && port != "443" {
			netloc = net.JoinHostPort(netloc, port)
		}

		target := url.URL{
			Scheme:   scheme,
			Host:     netloc,
			Path:     c.Request.URL.Path,
			RawPath:  c.Request.URL.RawPath,
			RawQuery: c.Request.URL.RawQuery,
		}
		c.Redirect(http.StatusFound, target.String())
		c.Abort()
	}
}

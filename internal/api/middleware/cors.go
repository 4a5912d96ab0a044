package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	// AllowExtensions permits chrome-extension:// and moz-extension:// entries in AllowOrigins.
	AllowExtensions bool
	MaxAge          time.Duration
}

// DefaultCORSConfig admits the extension pages and local tooling.
func DefaultCORSConfig(extensionBaseURL string) CORSConfig {
	origins := []string{"http://localhost", "http://127.0.0.1"}
	if origin := strings.TrimSuffix(extensionBaseURL, "/"); origin != "" {
		origins = append(origins, origin)
	}
	return CORSConfig{
		AllowOrigins:    origins,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Accept", "Origin", "Authorization"},
		AllowExtensions: true,
		MaxAge:          12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:           cfg.AllowOrigins,
		AllowMethods:           cfg.AllowMethods,
		AllowHeaders:           cfg.AllowHeaders,
		AllowBrowserExtensions: cfg.AllowExtensions,
		MaxAge:                 cfg.MaxAge,
	})
}

// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns the gin-contrib CORS middleware configured from the security config
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.Security.CORSAllowedMethods,
		AllowHeaders:     cfg.Security.CORSAllowedHeaders,
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}

	origins := cfg.Security.CORSAllowedOrigins
	if containsWildcard(origins) {
		corsCfg.AllowOriginFunc = func(origin string) bool {
			return isOriginAllowed(origin, origins)
		}
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.Contains(o, "*") {
			return true
		}
	}
	return false
}

// isOriginAllowed matches exact origins, "*" and wildcard subdomains such as *.example.com
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, "."+strings.TrimPrefix(allowed, "*.")) {
			return true
		}
	}
	return false
}

// OriginChecker reports whether a websocket upgrade comes from an allowed CORS origin.
// Requests without an Origin header are not from a browser and pass.
func OriginChecker(cfg *config.Config) func(r *http.Request) bool {
	origins := cfg.Security.CORSAllowedOrigins
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isOriginAllowed(origin, origins)
	}
}

package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the landing page origins to call the API. A "*"
// entry (or an empty list) opens the API to every origin without
// credentials.
func CORSMiddleware(allowOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"X-Requested-With", "Cache-Control",
			RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Type", "Content-Disposition", "Cache-Control", "Connection",
			RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}

	if len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}

package middleware

import (
	"time"

	intconfig "nganya/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS builds the cross-origin policy from CORS_ALLOWED_ORIGINS. "*" or an
// empty list admits every origin without credentials.
func CORS(env intconfig.Env) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        24 * time.Hour,
	}
	if env.AllowAllOrigins() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = env.CORSOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

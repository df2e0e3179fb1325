package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/types"
)

// CORSMiddleware allows the donation frontends to call the API. Local mode allows any origin.
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if cfg.Deployment.Mode == types.ModeLocal || len(cfg.Server.AllowedOrigins) == 0 {
		return cors.Default()
	}

	cc := cors.DefaultConfig()
	cc.AllowOrigins = cfg.Server.AllowedOrigins
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", types.HeaderRequestID)
	cc.ExposeHeaders = []string{types.HeaderRequestID}
	cc.MaxAge = 12 * time.Hour
	return cors.New(cc)
}

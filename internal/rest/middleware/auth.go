package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/auth"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/types"
)

const headerAuthorization = "Authorization"

// AdminAuthMiddleware requires a bearer token carrying the admin role
func AdminAuthMiddleware(validator *auth.Validator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(headerAuthorization)
		if authHeader == "" {
			abortWithError(c, ierr.NewError("missing authorization header").
				WithHint("Unauthorized").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, ierr.NewError("malformed authorization header").
				WithHint("Invalid authorization header format").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		claims, err := validator.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Debugw("failed to validate token", "error", err)
			abortWithError(c, err)
			return
		}

		if claims.Role != auth.RoleAdmin {
			abortWithError(c, ierr.NewError("admin role required").
				WithHint("You do not have access to this resource").
				WithReportableDetails(map[string]any{"role": claims.Role}).
				Mark(ierr.ErrPermissionDenied))
			return
		}

		c.Request = c.Request.WithContext(types.SetUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// abortWithError stops the chain and leaves rendering to ErrorHandler
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

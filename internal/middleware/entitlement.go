package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

// RequireEntitlement rejects accounts without an active subscription with 402.
// Must run after JWT.
func RequireEntitlement() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !claims.Entitled {
			abort(c, appErrors.ErrPaymentRequired)
			return
		}
		c.Next()
	}
}

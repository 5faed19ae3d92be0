package middleware

import (
	"wallet_api/internal/apperr" // Typed errors
	"wallet_api/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// TokenHeader carries the access token issued by the login endpoint
const TokenHeader = "x-auth-token"

// Auth validates the access token and stores the caller's Identity
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader) // Get token header
		// Reject requests that carry no token at all
		if token == "" {
			Abort(c, apperr.Auth("No token provided"))
			return
		}
		claims, err := utils.ParseJWT(token, secret) // Parse the JWT token
		if err != nil {
			Abort(c, apperr.Auth("Invalid token"))
			return
		}
		c.Set(identityKey, Identity{UserID: claims.UserID, RoleID: claims.RoleID})
		c.Next() // Proceed to the next handler
	}
}

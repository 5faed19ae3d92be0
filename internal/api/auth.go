package api

import (
	"errors" // Error inspection
	"time"   // Token lifetime

	"wallet_api/internal/apperr"     // Typed errors
	"wallet_api/internal/middleware" // Request context accessors
	"wallet_api/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token for the x-auth-token header
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users UserStore, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, _ := middleware.Payload[LoginRequest](c)
		invalid := apperr.Unauthorized("Invalid credentials")
		user, err := users.FindByEmail(c.Request.Context(), req.Email) // Fetch user from database
		if err != nil {
			var notFound *apperr.NotFoundError
			if errors.As(err, &notFound) {
				_ = c.Error(invalid) // Unknown email
				return
			}
			_ = c.Error(apperr.Persistence("auth - POST", err))
			return
		}
		// Compare provided password with stored hash
		if !utils.ComparePassword(user.Password, req.Password) {
			logrus.WithField("user_id", user.ID).Warn("Login rejected")
			_ = c.Error(invalid)
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.RoleID, jwtSecret, ttl)
		if err != nil {
			_ = c.Error(apperr.Security("auth - POST", err))
			return
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		EndpointResponse(c, Response{Message: "Login successful", Body: AuthResponse{Token: token}})
	}
}

package middleware

import "github.com/gin-gonic/gin"

// CheckID rejects requests whose :id is not a positive integer
func CheckID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := ParamID(c); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}

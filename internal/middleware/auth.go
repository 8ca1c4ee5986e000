package middleware

import (
	"net/http"

	"salesor-api/config"
	"salesor-api/internal/models"
	"salesor-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie carrying the session JWT.
const TokenCookie = "token"

// Auth validates the JWT cookie and stores the caller's id and role on the
// context. A missing or invalid token aborts with 401.
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Not authorized, no token",
			})
			return
		}

		claims, err := utils.ValidateToken(token, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Not authorized, token failed",
			})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// Authorize restricts a route to the given roles.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("userRole")
		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "forbidden",
			Message: "User role " + roleStr + " is not authorized to access this route",
		})
	}
}

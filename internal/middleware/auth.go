package middleware

import (
	"net/http"
	"strings"

	"boards/internal/auth"
	"boards/internal/response"

	"github.com/gin-gonic/gin"
)

// CallerKey is the gin context key holding the authenticated identity.
const CallerKey = "caller"

// JWTAuthMiddleware rejects requests without a valid bearer token.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header is required")
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		identity, err := auth.ParseToken(token, secret)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(CallerKey, identity)
		c.Next()
	}
}

// Caller returns the identity set by JWTAuthMiddleware.
func Caller(c *gin.Context) (string, bool) {
	identity := c.GetString(CallerKey)
	return identity, identity != ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

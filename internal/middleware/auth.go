package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// AuthMiddleware only establishes identity from the bearer token.
// Handlers that need the user row fetch it themselves, so a token for a
// since-deleted user still authenticates and resolves to 404 later.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Failure("Authorization token is required", nil))
			return
		}

		tokenString := auth.ExtractBearer(authHeader)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Failure("Authorization header format must be Bearer {token}", nil))
			return
		}

		userID, err := auth.VerifyJWT(tokenString)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Failure("Invalid or expired token", nil))
			return
		}

		ctx.Set(types.ContextUserKey, userID)
		ctx.Next()
	}
}

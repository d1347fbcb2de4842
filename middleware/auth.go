package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbscontroller/utils"
)

// ContextServiceKey stores the authenticated caller's service name in the Gin context.
const ContextServiceKey = "service"

// ServiceTokenRequired checks the bearer service token. An empty secret turns the check off,
// for deployments where the controller is only reachable from trusted hosts.
func ServiceTokenRequired(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secret == "" {
			ctx.Next()
			return
		}

		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Fail(ctx, http.StatusUnauthorized, 40101, "Unauthorized", "authorization header missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Fail(ctx, http.StatusUnauthorized, 40102, "Unauthorized", "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Fail(ctx, http.StatusUnauthorized, 40103, "Unauthorized", "empty bearer token")
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			utils.Fail(ctx, http.StatusUnauthorized, 40105, "Unauthorized", "invalid token")
			return
		}

		ctx.Set(ContextServiceKey, claims.Service)
		ctx.Next()
	}
}

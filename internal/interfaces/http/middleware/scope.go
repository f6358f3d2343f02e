package middleware

import (
	"errors"
	"net/http"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScopeKey is the context key holding the resolved branch scope.
const ScopeKey = "branch_scope"

// ScopeMiddleware resolves the actor's branch scope from the validated JWT
// claims and stores it in the request context. It must run after the JWT
// middleware; requests without claims are rejected.
func ScopeMiddleware(resolver org.ScopeResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}

		userID, err := claims.GetUserUUID()
		if err != nil {
			abortScopeError(c, http.StatusUnauthorized, "ERR_TOKEN_INVALID", "Token carries a malformed user ID")
			return
		}
		branchID, err := claims.GetBranchUUID()
		if err != nil {
			abortScopeError(c, http.StatusUnauthorized, "ERR_TOKEN_INVALID", "Token carries a malformed branch ID")
			return
		}

		scope, err := resolver.Resolve(c.Request.Context(), userID, branchID, claims.GetRole())
		if err != nil {
			if log != nil {
				log.Warn("branch scope resolution failed",
					zap.String("user_id", claims.UserID),
					zap.String("branch_id", claims.BranchID),
					zap.Error(err),
				)
			}
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
				abortScopeError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Token references an unknown branch")
				return
			}
			abortScopeError(c, http.StatusInternalServerError, "ERR_INTERNAL", "Failed to resolve branch scope")
			return
		}

		c.Set(ScopeKey, scope)
		c.Next()
	}
}

func abortScopeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetScope retrieves the resolved branch scope from gin.Context.
// The second return value reports whether a scope was present.
func GetScope(c *gin.Context) (org.Scope, bool) {
	if v, exists := c.Get(ScopeKey); exists {
		if scope, ok := v.(org.Scope); ok {
			return scope, true
		}
	}
	return org.Scope{}, false
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamtasks/internal/authz"
)

const scopeKey = "scope"

// RequireScope reads the listing scope from ?mode=personal|team&teamId=...
// A missing mode means personal.
func RequireScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := authz.Scope{
			Mode:   authz.Mode(c.DefaultQuery("mode", string(authz.ModePersonal))),
			TeamID: c.Query("teamId"),
		}
		if err := scope.Validate(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Set(scopeKey, scope)
		c.Next()
	}
}

func ScopeFrom(c *gin.Context) authz.Scope {
	if v, ok := c.Get(scopeKey); ok {
		if scope, ok := v.(authz.Scope); ok {
			return scope
		}
	}
	return authz.PersonalScope()
}

// RequireActor guards handlers mounted outside AuthMiddleware.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})
			return
		}
		c.Next()
	}
}

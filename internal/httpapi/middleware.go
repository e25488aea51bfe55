package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/service/auth"
)

// identityKey — ключ, под которым личность лежит в контексте gin.
const identityKey = "httpapi.identity"

// requireAuth проверяет bearer-токен и кладёт личность в контекст запроса.
func requireAuth(gate auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := gate.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(statusForError(err), errorResponse{Error: err.Error()})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// requireRoles пропускает запрос дальше только для перечисленных ролей.
// Ставится после requireAuth.
func requireRoles(gate auth.Service, allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(statusForError(domain.ErrMissingToken), errorResponse{Error: domain.ErrMissingToken.Error()})
			return
		}
		if err := gate.Authorize(identity, allowed...); err != nil {
			c.AbortWithStatusJSON(statusForError(err), errorResponse{Error: err.Error()})
			return
		}
		c.Next()
	}
}

// identityFrom достаёт личность, положенную requireAuth.
func identityFrom(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

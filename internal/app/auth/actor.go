package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models"
)

// actorKey is the gin context key holding the authenticated actor
const actorKey = "actor"

// Actor identifies the authenticated caller of an operation. Services take it
// as an explicit argument; it is never read from ambient state.
type Actor struct {
	UserID int64
	Role   models.RoleType
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// SetActor stores the actor in the request context
func SetActor(c *gin.Context, actor Actor) {
	c.Set(actorKey, actor)
}

// ActorFromContext retrieves the actor placed by the auth middleware
func ActorFromContext(c *gin.Context) (Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

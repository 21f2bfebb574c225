package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/association-ledger/internal/domain/shared"
)

const (
	// ActorIDHeader carries the identity of the acting committee member
	ActorIDHeader = "X-Actor-ID"

	// ActorRoleHeader carries the actor's role, resolved upstream
	ActorRoleHeader = "X-Actor-Role"

	actorKey = "actor"
)

// Actor is the authenticated caller as asserted by the upstream gateway
type Actor struct {
	ID   uuid.UUID
	Role shared.Role
}

// Authenticate resolves the actor headers and stores the Actor in the request
// context. Requests with a missing or malformed identity are rejected before
// any handler runs.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(ActorIDHeader))
		if err != nil {
			abortUnauthorized(c, "A valid "+ActorIDHeader+" header is required")
			return
		}

		role, ok := shared.ParseRole(c.GetHeader(ActorRoleHeader))
		if !ok {
			abortUnauthorized(c, "A valid "+ActorRoleHeader+" header is required")
			return
		}

		c.Set(actorKey, Actor{ID: id, Role: role})
		c.Next()
	}
}

// Require rejects the request with 403 unless the actor's role carries the
// given capability
func Require(capability shared.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}

		if !actor.Role.Can(capability) {
			response := gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Role " + string(actor.Role) + " may not perform this operation",
				},
			}
			if correlationID := GetCorrelationID(c); correlationID != "" {
				response["correlation_id"] = correlationID
			}
			c.AbortWithStatusJSON(http.StatusForbidden, response)
			return
		}

		c.Next()
	}
}

// ActorFrom retrieves the authenticated actor from the gin context
func ActorFrom(c *gin.Context) (Actor, bool) {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(Actor); ok {
			return actor, true
		}
	}
	return Actor{}, false
}

func abortUnauthorized(c *gin.Context, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}

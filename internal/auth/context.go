package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxIdentity = "identity"

// ErrUnauthenticated means no identity could be resolved for the request.
var ErrUnauthenticated = errors.New("Unauthorized")

// Identity is the authenticated principal behind a request.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// NewIdentity fills the display name from name, then email, then a placeholder.
func NewIdentity(id, name, email string) Identity {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	display := name
	if display == "" {
		display = email
	}
	if display == "" {
		display = "Unknown User"
	}
	return Identity{ID: strings.TrimSpace(id), DisplayName: display, Email: email}
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(CtxIdentity, id)
}

// IdentityFrom returns the identity stored by the identity middleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}

// IdentityID is the rate limiter key for a request.
func IdentityID(c *gin.Context) string {
	id, _ := IdentityFrom(c)
	return id.ID
}

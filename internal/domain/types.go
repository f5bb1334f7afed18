package domain

import "github.com/google/uuid"

// Role names the kind of identity a connection declares.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
)

func (r Role) Valid() bool {
	return r == RolePassenger || r == RoleDriver
}

// NewID returns an identity or entity id. Passenger and driver ids come from the
// same UUID space so their rooms never collide.
func NewID() string {
	return uuid.NewString()
}


package domain

// Role names carried in JWT claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actor identifies the caller of a privileged operation.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor may trigger broadcasts.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

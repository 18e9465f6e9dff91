package models

// Roles known to the access scope resolver.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"` // don’t expose hash
}

// Principal is the verified caller attached to a request.
type Principal struct {
	ID    int    `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsAdmin reports whether the principal sees every device.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

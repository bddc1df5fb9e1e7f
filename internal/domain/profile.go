package domain

import "time"

// Role distinguishes members from administrators.
type Role uint8

const (
	RoleMember Role = iota
	RoleAdmin
)

const roleAdminName = "admin"

// ParseRole maps a stored role value onto the closed Role set.
// Only the exact value "admin" grants RoleAdmin; anything else is a member.
func ParseRole(raw string) Role {
	if raw == roleAdminName {
		return RoleAdmin
	}
	return RoleMember
}

func (r Role) String() string {
	if r == RoleAdmin {
		return roleAdminName
	}
	return "member"
}

// MarshalText encodes the role as its stored name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Profile extends an identity with display data and role.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role. Nil profiles are not admin.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

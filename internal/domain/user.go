package domain

import "time"

// User is the credential record owned by the auth backend.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	// Metadata carries sign-up attributes such as full_name; it seeds the profile row.
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MetadataFullName is the sign-up metadata key holding the display name.
const MetadataFullName = "full_name"

// FullName returns the display name captured at sign-up, if any.
func (u *User) FullName() string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	return u.Metadata[MetadataFullName]
}

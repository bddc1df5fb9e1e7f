package domain

import "time"

// Identity is the authenticated principal as issued by the auth backend.
type Identity struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the identity's token is past its expiry at now.
func (i *Identity) Expired(now time.Time) bool {
	return i == nil || !now.Before(i.ExpiresAt)
}

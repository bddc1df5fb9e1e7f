package session

import (
	"strings"
	"time"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// observation is what one source reported about the identity and when it was observed.
// A nil identity means "no session".
type observation struct {
	identity *domain.Identity
	at       time.Time
}

// merge folds an incoming observation into the current one. It is commutative:
// the later observation wins and equal timestamps fall back to a stable key order,
// so the initial fetch and the event stream converge whatever order they arrive in.
func merge(current, incoming observation) observation {
	switch {
	case incoming.at.After(current.at):
		return incoming
	case incoming.at.Before(current.at):
		return current
	}
	if strings.Compare(identityKey(incoming.identity), identityKey(current.identity)) > 0 {
		return incoming
	}
	return current
}

func identityKey(id *domain.Identity) string {
	if id == nil {
		return ""
	}
	return id.ID + "|" + id.AccessToken
}

func identityID(id *domain.Identity) string {
	if id == nil {
		return ""
	}
	return id.ID
}

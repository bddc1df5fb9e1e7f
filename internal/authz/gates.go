// Package authz decides whether a client may reach a protected view.
// A denial is a Decision carrying the redirect target, never an error.
package authz

import (
	"context"

	"github.com/spec-kit/gym-portal/internal/session"
)

// Fixed redirect targets.
const (
	PathLogin        = "/login"
	PathUserHome     = "/user"
	PathAdminHome    = "/admin"
	PathSubscription = "/user/subscription"
)

// Outcome is the kind of a gate decision.
type Outcome uint8

const (
	Allow Outcome = iota
	Loading
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a gate. Target is set only for Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

func allow() Decision                 { return Decision{Outcome: Allow} }
func loading() Decision               { return Decision{Outcome: Loading} }
func redirect(target string) Decision { return Decision{Outcome: Redirect, Target: target} }

// View is the read-only part of a session store the gates need.
type View interface {
	State() session.State
	IsAdmin() bool
	// ProfileResolved is false while the role of a signed-in client is still unknown.
	ProfileResolved() bool
	HasActiveSubscription(ctx context.Context) bool
}

// RequiresAuthentication lets any signed-in client through. An expired session
// reads as anonymous.
func RequiresAuthentication(v View) Decision {
	switch v.State() {
	case session.StateAuthenticated:
		return allow()
	case session.StateAnonymous:
		return redirect(PathLogin)
	default:
		return loading()
	}
}

// RequiresAdmin lets only admins through; other members go to their dashboard.
func RequiresAdmin(v View) Decision {
	if d := requiresRole(v); d.Outcome != Allow {
		return d
	}
	if !v.IsAdmin() {
		return redirect(PathUserHome)
	}
	return allow()
}

// RequiresActiveSubscription lets members with a current subscription through.
// Admins are sent to the admin dashboard without querying subscriptions.
func RequiresActiveSubscription(ctx context.Context, v View) Decision {
	if d := requiresRole(v); d.Outcome != Allow {
		return d
	}
	if v.IsAdmin() {
		return redirect(PathAdminHome)
	}
	if !v.HasActiveSubscription(ctx) {
		return redirect(PathSubscription)
	}
	return allow()
}

// requiresRole is RequiresAuthentication that also waits for the profile, so an
// admin is never routed as a member.
func requiresRole(v View) Decision {
	if d := RequiresAuthentication(v); d.Outcome != Allow {
		return d
	}
	if !v.ProfileResolved() {
		return loading()
	}
	return allow()
}

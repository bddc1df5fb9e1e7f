package domain

import "time"

// PaymentStatus tracks placeholder payment outcomes.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// MembershipPlan is a purchasable gym plan.
type MembershipPlan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"duration_days"`
	Features     []string  `json:"features"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription links a user to a plan for a time window.
type Subscription struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	PlanID        string        `json:"plan_id"`
	PlanName      string        `json:"plan_name,omitempty"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	IsActive      bool          `json:"is_active"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod string        `json:"payment_method"`
	AutoRenew     bool          `json:"auto_renew"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Current reports whether the subscription is active and ends strictly after now.
func (s Subscription) Current(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}

// DaysLeft returns whole days remaining until the end date, never negative.
func (s Subscription) DaysLeft(now time.Time) int {
	if !s.EndDate.After(now) {
		return 0
	}
	return int(s.EndDate.Sub(now).Hours() / 24)
}

// SubscriptionFilter narrows subscription queries.
type SubscriptionFilter struct {
	ActiveOnly bool
	EndsAfter  *time.Time
	Limit      int
}

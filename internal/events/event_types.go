package events

import (
	"time"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionSignedIn       EventType = "session_signed_in"
	EventSessionSignedOut      EventType = "session_signed_out"
	EventSessionTokenRefreshed EventType = "session_token_refreshed"

	EventSubscriptionPurchased   EventType = "subscription_purchased"
	EventSubscriptionDeactivated EventType = "subscription_deactivated"

	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"

	EventAttendanceCheckedIn  EventType = "attendance_checked_in"
	EventAttendanceCheckedOut EventType = "attendance_checked_out"
)

// SessionEventTypes are the types a browser session listens to.
var SessionEventTypes = []EventType{
	EventSessionSignedIn,
	EventSessionSignedOut,
	EventSessionTokenRefreshed,
}

// Event represents a domain event emitted by services.
// SessionID is set for session events and scopes them to one browser session.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionPayload carries the identity for sign-in and refresh events.
type SessionPayload struct {
	Identity *domain.Identity `json:"identity,omitempty"`
}

// SubscriptionPurchasedPayload payload.
type SubscriptionPurchasedPayload struct {
	SubscriptionID string    `json:"subscription_id"`
	PlanID         string    `json:"plan_id"`
	PlanName       string    `json:"plan_name"`
	Price          float64   `json:"price"`
	EndDate        time.Time `json:"end_date"`
}

// SubscriptionDeactivatedPayload payload.
type SubscriptionDeactivatedPayload struct {
	SubscriptionID string `json:"subscription_id"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID   string             `json:"order_id"`
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// AttendancePayload payload for check-in and check-out.
type AttendancePayload struct {
	RecordID string `json:"record_id"`
	Location string `json:"location"`
}

package domain

import "time"

// MemberSummary is a row of the admin members view.
type MemberSummary struct {
	UserID            string     `json:"user_id"`
	FullName          string     `json:"full_name"`
	Email             string     `json:"email"`
	AvatarURL         *string    `json:"avatar_url,omitempty"`
	Role              Role       `json:"role"`
	JoinDate          time.Time  `json:"join_date"`
	PlanName          *string    `json:"plan_name,omitempty"`
	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`
	IsActive          bool       `json:"is_active"`
	LastCheckIn       *time.Time `json:"last_check_in,omitempty"`
	VisitsThisMonth   int        `json:"visits_this_month"`
}

// FinancialSummary aggregates revenue for a calendar month.
type FinancialSummary struct {
	Month             string  `json:"month"`
	Year              int     `json:"year"`
	OrderRevenue      float64 `json:"order_revenue"`
	MembershipRevenue float64 `json:"membership_revenue"`
	TotalRevenue      float64 `json:"total_revenue"`
	ActiveMemberships int     `json:"active_memberships"`
	OrdersCount       int     `json:"orders_count"`
}

// AdminOverview is the headline numbers of the admin dashboard.
type AdminOverview struct {
	TotalMembers      int              `json:"total_members"`
	ActiveMemberships int              `json:"active_memberships"`
	CheckedInNow      int              `json:"checked_in_now"`
	PendingOrders     int              `json:"pending_orders"`
	Financials        FinancialSummary `json:"financials"`
}

package dto

import (
	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/service"
)

// PurchaseSubscriptionRequest buys a plan.
type PurchaseSubscriptionRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

// SubscriptionResponse is the member's subscription page.
type SubscriptionResponse struct {
	Current *domain.Subscription    `json:"current"`
	History []domain.Subscription   `json:"history"`
	Plans   []domain.MembershipPlan `json:"plans"`
}

// UserDashboardResponse is the member landing page.
type UserDashboardResponse struct {
	Profile      *domain.Profile         `json:"profile"`
	Subscription *domain.Subscription    `json:"subscription"`
	Stats        *domain.MemberStats     `json:"stats"`
	Today        service.AttendanceToday `json:"today"`
}

// AttendanceResponse is the member attendance page.
type AttendanceResponse struct {
	Today   service.AttendanceToday   `json:"today"`
	History []domain.AttendanceRecord `json:"history"`
}

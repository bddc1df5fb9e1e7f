package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/events"
	"github.com/spec-kit/gym-portal/internal/repository"
	"github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

// DefaultPaymentMethod is recorded for placeholder card payments.
const DefaultPaymentMethod = "credit_card"

// SubscriptionService sells membership plans.
type SubscriptionService struct {
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           func() time.Time
}

// SubscriptionDependencies bundles repositories for the subscription service.
type SubscriptionDependencies struct {
	PlanRepo         repository.PlanRepository
	SubscriptionRepo repository.SubscriptionRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Now              func() time.Time
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(deps SubscriptionDependencies) *SubscriptionService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		plans:         deps.PlanRepo,
		subscriptions: deps.SubscriptionRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		now:           now,
	}
}

// ListPlans returns the purchasable plans.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]domain.MembershipPlan, error) {
	return s.plans.ListActive(ctx)
}

// Current returns the user's subscription that is active now, or nil.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*domain.Subscription, error) {
	now := s.now()
	subs, err := s.subscriptions.Query(ctx, userID, domain.SubscriptionFilter{ActiveOnly: true, EndsAfter: &now, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return &subs[0], nil
}

// History returns all of the user's subscriptions, newest first.
func (s *SubscriptionService) History(ctx context.Context, userID string) ([]domain.Subscription, error) {
	return s.subscriptions.Query(ctx, userID, domain.SubscriptionFilter{})
}

// Purchase replaces any active subscription with a new one for planID starting now.
// Payment is a placeholder and always completes.
func (s *SubscriptionService) Purchase(ctx context.Context, userID, planID string) (*domain.Subscription, error) {
	if _, err := uuid.Parse(planID); err != nil {
		return nil, errorutil.NewValidationError("invalid plan id", map[string]any{"plan_id": planID})
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("plan", map[string]any{"plan_id": planID})
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, errorutil.NewValidationError("plan is not available", map[string]any{"plan_id": planID})
	}

	start := s.now()
	sub := &domain.Subscription{
		UserID:        userID,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, plan.DurationDays),
		IsActive:      true,
		PaymentStatus: domain.PaymentStatusCompleted,
		PaymentMethod: DefaultPaymentMethod,
	}
	if err := s.subscriptions.Replace(ctx, sub); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventSubscriptionPurchased,
		UserID: userID,
		Payload: events.SubscriptionPurchasedPayload{
			SubscriptionID: sub.ID,
			PlanID:         plan.ID,
			PlanName:       plan.Name,
			Price:          plan.Price,
			EndDate:        sub.EndDate,
		},
	})
	return sub, nil
}

// Deactivate cancels one of the user's subscriptions.
func (s *SubscriptionService) Deactivate(ctx context.Context, userID, subscriptionID string) error {
	if _, err := uuid.Parse(subscriptionID); err != nil {
		return errorutil.NewValidationError("invalid subscription id", map[string]any{"subscription_id": subscriptionID})
	}
	if err := s.subscriptions.Deactivate(ctx, subscriptionID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewNotFound("subscription", map[string]any{"subscription_id": subscriptionID})
		}
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventSubscriptionDeactivated,
		UserID:  userID,
		Payload: events.SubscriptionDeactivatedPayload{SubscriptionID: subscriptionID},
	})
	return nil
}

func (s *SubscriptionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

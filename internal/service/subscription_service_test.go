package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/events"
	"github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

const (
	premiumPlanID = "6f1c2a44-7a0b-4c1e-9d51-0c1f6b6b7a01"
	retiredPlanID = "6f1c2a44-7a0b-4c1e-9d51-0c1f6b6b7a02"
	testUserID    = "0d5e9a3c-1b2f-4f53-8a44-3b8f2f1c9e10"
	testSubID     = "9a0e7f6d-5c4b-4a39-8b27-1e2d3c4b5a69"
	unknownPlanID = "6f1c2a44-7a0b-4c1e-9d51-0c1f6b6b7aff"
)

func newPlanFixture() *fakePlans {
	return &fakePlans{plans: map[string]*domain.MembershipPlan{
		premiumPlanID: {ID: premiumPlanID, Name: "Premium", Price: 49.99, DurationDays: 30, IsActive: true},
		retiredPlanID: {ID: retiredPlanID, Name: "Legacy", Price: 10, DurationDays: 30, IsActive: false},
	}}
}

func domainStatus(t *testing.T, err error) int {
	t.Helper()
	var domainErr *errorutil.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.HTTPStatus
}

func TestSubscriptionService_Purchase(t *testing.T) {
	var replaced *domain.Subscription
	subs := &fakeSubscriptions{replaceFn: func(_ context.Context, sub *domain.Subscription) error {
		sub.ID = testSubID
		replaced = sub
		return nil
	}}
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.EventSubscriptionPurchased, func(_ context.Context, ev events.Event) error {
		published = append(published, ev)
		return nil
	})
	svc := NewSubscriptionService(SubscriptionDependencies{
		PlanRepo:         newPlanFixture(),
		SubscriptionRepo: subs,
		Dispatcher:       dispatcher,
		Now:              fixedClock,
	})

	sub, err := svc.Purchase(context.Background(), testUserID, premiumPlanID)
	require.NoError(t, err)
	require.Same(t, replaced, sub)
	assert.Equal(t, testUserID, sub.UserID)
	assert.Equal(t, baseTime, sub.StartDate)
	assert.Equal(t, baseTime.AddDate(0, 0, 30), sub.EndDate)
	assert.True(t, sub.IsActive)
	assert.Equal(t, domain.PaymentStatusCompleted, sub.PaymentStatus)
	assert.Equal(t, DefaultPaymentMethod, sub.PaymentMethod)
	assert.True(t, sub.Current(baseTime))

	require.Len(t, published, 1)
	payload := published[0].Payload.(events.SubscriptionPurchasedPayload)
	assert.Equal(t, testSubID, payload.SubscriptionID)
	assert.Equal(t, "Premium", payload.PlanName)
}

func TestSubscriptionService_PurchaseRejections(t *testing.T) {
	svc := NewSubscriptionService(SubscriptionDependencies{
		PlanRepo:         newPlanFixture(),
		SubscriptionRepo: &fakeSubscriptions{},
		Now:              fixedClock,
	})

	tests := []struct {
		name   string
		planID string
		status int
	}{
		{name: "malformed id", planID: "premium", status: http.StatusBadRequest},
		{name: "unknown plan", planID: unknownPlanID, status: http.StatusNotFound},
		{name: "inactive plan", planID: retiredPlanID, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Purchase(context.Background(), testUserID, tt.planID)
			assert.Equal(t, tt.status, domainStatus(t, err))
		})
	}
}

func TestSubscriptionService_Current(t *testing.T) {
	var gotFilter domain.SubscriptionFilter
	subs := &fakeSubscriptions{queryFn: func(_ context.Context, _ string, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
		gotFilter = filter
		return nil, nil
	}}
	svc := NewSubscriptionService(SubscriptionDependencies{PlanRepo: newPlanFixture(), SubscriptionRepo: subs, Now: fixedClock})

	current, err := svc.Current(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.True(t, gotFilter.ActiveOnly)
	require.NotNil(t, gotFilter.EndsAfter)
	assert.Equal(t, baseTime, *gotFilter.EndsAfter)
	assert.Equal(t, 1, gotFilter.Limit)

	subs.queryFn = func(context.Context, string, domain.SubscriptionFilter) ([]domain.Subscription, error) {
		return []domain.Subscription{{ID: testSubID, EndDate: baseTime.Add(48 * time.Hour), IsActive: true}}, nil
	}
	current, err = svc.Current(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, testSubID, current.ID)
}

func TestSubscriptionService_Deactivate(t *testing.T) {
	var gotID, gotUser string
	subs := &fakeSubscriptions{deactivateFn: func(_ context.Context, id, userID string) error {
		gotID, gotUser = id, userID
		return nil
	}}
	svc := NewSubscriptionService(SubscriptionDependencies{PlanRepo: newPlanFixture(), SubscriptionRepo: subs, Now: fixedClock})

	require.NoError(t, svc.Deactivate(context.Background(), testUserID, testSubID))
	assert.Equal(t, testSubID, gotID)
	assert.Equal(t, testUserID, gotUser)

	assert.Equal(t, http.StatusBadRequest, domainStatus(t, svc.Deactivate(context.Background(), testUserID, "x")))

	subs.deactivateFn = func(context.Context, string, string) error { return errNoRowsForTest }
	assert.Equal(t, http.StatusNotFound, domainStatus(t, svc.Deactivate(context.Background(), testUserID, testSubID)))

	boom := errors.New("boom")
	subs.deactivateFn = func(context.Context, string, string) error { return boom }
	assert.ErrorIs(t, svc.Deactivate(context.Background(), testUserID, testSubID), boom)
}

package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gym-portal/internal/domain"
)

func TestAttendanceService_CheckInCheckOutCycle(t *testing.T) {
	repo := &fakeAttendance{}
	clock := baseTime
	svc := NewAttendanceService(AttendanceDependencies{
		AttendanceRepo:   repo,
		SubscriptionRepo: &fakeSubscriptions{},
		Now:              func() time.Time { return clock },
	})
	ctx := context.Background()

	today, err := svc.Today(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceNone, today.Status)

	_, err = svc.CheckOut(ctx, testUserID)
	assert.Equal(t, http.StatusConflict, domainStatus(t, err))

	record, err := svc.CheckIn(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAttendanceLocation, record.Location)
	assert.Equal(t, testUserID, record.CreatedBy)

	_, err = svc.CheckIn(ctx, testUserID)
	assert.Equal(t, http.StatusConflict, domainStatus(t, err))

	clock = clock.Add(90 * time.Minute)
	out, err := svc.CheckOut(ctx, testUserID)
	require.NoError(t, err)
	require.NotNil(t, out.CheckOutTime)
	assert.Equal(t, clock, *out.CheckOutTime)

	today, err = svc.Today(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceCheckedOut, today.Status)

	clock = clock.Add(time.Hour)
	_, err = svc.CheckIn(ctx, testUserID)
	require.NoError(t, err, "a second visit on the same day is allowed")
}

func TestAttendanceService_TodayIgnoresYesterday(t *testing.T) {
	repo := &fakeAttendance{records: []domain.AttendanceRecord{
		{ID: "r1", UserID: testUserID, CheckInTime: baseTime.Add(-24 * time.Hour)},
	}}
	svc := NewAttendanceService(AttendanceDependencies{AttendanceRepo: repo, SubscriptionRepo: &fakeSubscriptions{}, Now: fixedClock})

	today, err := svc.Today(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceNone, today.Status)
}

func TestAttendanceService_Stats(t *testing.T) {
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeAttendance{counts: map[time.Time]int{
		baseTime.Add(-7 * 24 * time.Hour): 3,
		monthStart:                        8,
	}}
	subs := &fakeSubscriptions{}
	svc := NewAttendanceService(AttendanceDependencies{AttendanceRepo: repo, SubscriptionRepo: subs, Now: fixedClock})

	stats, err := svc.Stats(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RecentVisits)
	assert.Equal(t, 8, stats.TotalVisitsMonth)
	assert.Equal(t, "inactive", stats.MembershipStatus)
	assert.Zero(t, stats.MembershipDaysLeft)

	subs.queryFn = func(context.Context, string, domain.SubscriptionFilter) ([]domain.Subscription, error) {
		return []domain.Subscription{{IsActive: true, EndDate: baseTime.Add(10*24*time.Hour + time.Hour)}}, nil
	}
	stats, err = svc.Stats(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "active", stats.MembershipStatus)
	assert.Equal(t, 10, stats.MembershipDaysLeft)
}

func TestMemberService_Financials(t *testing.T) {
	var gotFrom, gotTo time.Time
	members := &fakeMembers{financialsFn: func(_ context.Context, from, to time.Time) (*domain.FinancialSummary, error) {
		gotFrom, gotTo = from, to
		return &domain.FinancialSummary{}, nil
	}}
	svc := NewMemberService(members, fixedClock)
	ctx := context.Background()

	_, err := svc.Financials(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), gotTo)

	_, err = svc.Financials(ctx, 2025, 12)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), gotTo)

	_, err = svc.Financials(ctx, 2026, 13)
	assert.Equal(t, http.StatusBadRequest, domainStatus(t, err))

	_, err = svc.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), members.monthStart)
}

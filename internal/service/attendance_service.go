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

const (
	attendanceHistoryLimit = 10
	adminAttendanceLimit   = 500
	recentVisitsWindow     = 7 * 24 * time.Hour
)

// AttendanceService records gym visits.
type AttendanceService struct {
	records       repository.AttendanceRepository
	subscriptions repository.SubscriptionRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           func() time.Time
}

// AttendanceDependencies bundles repositories for the attendance service.
type AttendanceDependencies struct {
	AttendanceRepo   repository.AttendanceRepository
	SubscriptionRepo repository.SubscriptionRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Now              func() time.Time
}

// AttendanceToday is a member's visit state for the current day.
type AttendanceToday struct {
	Status domain.AttendanceStatus  `json:"status"`
	Record *domain.AttendanceRecord `json:"record,omitempty"`
}

// NewAttendanceService constructs the service.
func NewAttendanceService(deps AttendanceDependencies) *AttendanceService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		records:       deps.AttendanceRepo,
		subscriptions: deps.SubscriptionRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		now:           now,
	}
}

// Today returns the state derived from the latest visit since midnight.
func (s *AttendanceService) Today(ctx context.Context, userID string) (AttendanceToday, error) {
	latest, err := s.records.LatestSince(ctx, userID, startOfDay(s.now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AttendanceToday{Status: domain.AttendanceNone}, nil
		}
		return AttendanceToday{}, err
	}
	return AttendanceToday{Status: latest.Status(), Record: latest}, nil
}

// CheckIn opens a visit at the main gym. A member can check in again after checking out.
func (s *AttendanceService) CheckIn(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	today, err := s.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	if today.Status == domain.AttendanceCheckedIn {
		return nil, errorutil.NewConflict("already checked in", map[string]any{"record_id": today.Record.ID})
	}

	record := &domain.AttendanceRecord{
		UserID:      userID,
		CheckInTime: s.now(),
		Location:    domain.DefaultAttendanceLocation,
		CreatedBy:   userID,
	}
	if err := s.records.CheckIn(ctx, record); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventAttendanceCheckedIn, userID, record)
	return record, nil
}

// CheckOut closes the member's open visit.
func (s *AttendanceService) CheckOut(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	record, err := s.records.CheckOut(ctx, userID, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewConflict("not checked in", nil)
		}
		return nil, err
	}
	s.publish(ctx, events.EventAttendanceCheckedOut, userID, record)
	return record, nil
}

// History returns the member's most recent visits.
func (s *AttendanceService) History(ctx context.Context, userID string) ([]domain.AttendanceRecord, error) {
	return s.records.ListByUser(ctx, userID, attendanceHistoryLimit)
}

// AdminList returns visits since the given day joined with member details.
func (s *AttendanceService) AdminList(ctx context.Context, since time.Time) ([]domain.AdminAttendanceRow, error) {
	if since.IsZero() {
		since = startOfDay(s.now())
	}
	return s.records.ListAdmin(ctx, since, adminAttendanceLimit)
}

// Stats summarises the member's visits and membership for the dashboard.
func (s *AttendanceService) Stats(ctx context.Context, userID string) (*domain.MemberStats, error) {
	now := s.now()
	recent, err := s.records.CountSince(ctx, userID, now.Add(-recentVisitsWindow))
	if err != nil {
		return nil, err
	}
	month, err := s.records.CountSince(ctx, userID, startOfMonth(now))
	if err != nil {
		return nil, err
	}
	stats := &domain.MemberStats{
		UserID:           userID,
		RecentVisits:     recent,
		TotalVisitsMonth: month,
		MembershipStatus: "inactive",
	}

	subs, err := s.subscriptions.Query(ctx, userID, domain.SubscriptionFilter{ActiveOnly: true, EndsAfter: &now, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(subs) > 0 {
		stats.MembershipStatus = "active"
		stats.MembershipDaysLeft = subs[0].DaysLeft(now)
	}
	return stats, nil
}

func (s *AttendanceService) publish(ctx context.Context, eventType events.EventType, userID string, record *domain.AttendanceRecord) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: s.now(),
		Payload:   events.AttendancePayload{RecordID: record.ID, Location: record.Location},
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

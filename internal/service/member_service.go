package service

import (
	"context"
	"time"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/repository"
	"github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

// MemberService backs the admin dashboard.
type MemberService struct {
	members repository.MemberRepository
	now     func() time.Time
}

// NewMemberService constructs the service.
func NewMemberService(members repository.MemberRepository, now func() time.Time) *MemberService {
	if now == nil {
		now = time.Now
	}
	return &MemberService{members: members, now: now}
}

// Members lists every member with subscription and visit details.
func (s *MemberService) Members(ctx context.Context) ([]domain.MemberSummary, error) {
	return s.members.ListMembers(ctx, startOfMonth(s.now()))
}

// Financials aggregates revenue for a calendar month. Zero month or year means the current one.
func (s *MemberService) Financials(ctx context.Context, year, month int) (*domain.FinancialSummary, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, errorutil.NewValidationError("month must be between 1 and 12", map[string]any{"month": month})
	}
	if year < 2000 || year > 9999 {
		return nil, errorutil.NewValidationError("invalid year", map[string]any{"year": year})
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	return s.members.Financials(ctx, from, from.AddDate(0, 1, 0))
}

// Overview returns the admin dashboard headline numbers.
func (s *MemberService) Overview(ctx context.Context) (*domain.AdminOverview, error) {
	return s.members.Overview(ctx, s.now())
}

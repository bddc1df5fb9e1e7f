package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/repository"
)

var errNoRowsForTest = pgx.ErrNoRows

var baseTime = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return baseTime }

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}, byEmail: map[string]string{}}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	user.ID = uuid.NewString()
	copied := *user
	m.byID[user.ID] = &copied
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

type memProfiles struct {
	mu      sync.Mutex
	rows    map[string]*domain.Profile
	creates int
	getErr  error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: map[string]*domain.Profile{}}
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *memProfiles) EnsureExists(_ context.Context, id, fullName string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		m.creates++
		m.rows[id] = &domain.Profile{ID: id, FullName: fullName, Role: domain.RoleMember}
	}
	copied := *m.rows[id]
	return &copied, nil
}

func (m *memProfiles) Update(_ context.Context, id string, fullName *string, avatarURL *string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if fullName != nil {
		p.FullName = *fullName
	}
	if avatarURL != nil {
		p.AvatarURL = avatarURL
	}
	copied := *p
	return &copied, nil
}

func (m *memProfiles) setRole(id string, role domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		p.Role = role
	}
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	ttls   map[string]time.Duration
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memTokens) Save(_ context.Context, sessionID, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sessionID] = token
	m.ttls[sessionID] = ttl
	return nil
}

func (m *memTokens) Get(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[sessionID]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	return t, nil
}

func (m *memTokens) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sessionID)
	return nil
}

func (m *memTokens) has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[sessionID]
	return ok
}

type fakeSubscriptions struct {
	queryFn      func(ctx context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error)
	replaceFn    func(ctx context.Context, sub *domain.Subscription) error
	deactivateFn func(ctx context.Context, id, userID string) error
}

func (f *fakeSubscriptions) Query(ctx context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	if f.queryFn != nil {
		return f.queryFn(ctx, userID, filter)
	}
	return nil, nil
}

func (f *fakeSubscriptions) Replace(ctx context.Context, sub *domain.Subscription) error {
	if f.replaceFn != nil {
		return f.replaceFn(ctx, sub)
	}
	sub.ID = uuid.NewString()
	return nil
}

func (f *fakeSubscriptions) Deactivate(ctx context.Context, id, userID string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id, userID)
	}
	return nil
}

type fakePlans struct {
	plans map[string]*domain.MembershipPlan
}

func (f *fakePlans) ListActive(context.Context) ([]domain.MembershipPlan, error) {
	out := make([]domain.MembershipPlan, 0, len(f.plans))
	for _, p := range f.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlans) GetByID(_ context.Context, id string) (*domain.MembershipPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

type fakeProducts struct {
	listFn   func(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	getFn    func(ctx context.Context, id string) (*domain.Product, error)
	updateFn func(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error)
}

func (f *fakeProducts) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProducts) Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, update)
	}
	return &domain.Product{ID: id}, nil
}

func (f *fakeProducts) ListCategories(context.Context) ([]domain.ProductCategory, error) {
	return nil, nil
}

type fakeOrders struct {
	createFn       func(ctx context.Context, order *domain.Order) error
	getFn          func(ctx context.Context, id string) (*domain.Order, error)
	updateStatusFn func(ctx context.Context, id string, status domain.OrderStatus) error
	listAllFn      func(ctx context.Context, status *domain.OrderStatus, limit int) ([]domain.Order, error)
}

func (f *fakeOrders) Create(ctx context.Context, order *domain.Order) error {
	if f.createFn != nil {
		return f.createFn(ctx, order)
	}
	order.ID = uuid.NewString()
	order.Status = domain.OrderStatusProcessing
	order.PaymentStatus = domain.PaymentStatusCompleted
	return nil
}

func (f *fakeOrders) ListByUser(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeOrders) ListAll(ctx context.Context, status *domain.OrderStatus, limit int) ([]domain.Order, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx, status, limit)
	}
	return nil, nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

type fakeAttendance struct {
	mu      sync.Mutex
	records []domain.AttendanceRecord
	counts  map[time.Time]int
}

func (f *fakeAttendance) LatestSince(_ context.Context, userID string, since time.Time) (*domain.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.AttendanceRecord
	for i := range f.records {
		r := &f.records[i]
		if r.UserID != userID || r.CheckInTime.Before(since) {
			continue
		}
		if latest == nil || r.CheckInTime.After(latest.CheckInTime) {
			latest = r
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeAttendance) CheckIn(_ context.Context, record *domain.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = uuid.NewString()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAttendance) CheckOut(_ context.Context, userID string, at time.Time) (*domain.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		r := &f.records[i]
		if r.UserID == userID && r.CheckOutTime == nil {
			out := at
			r.CheckOutTime = &out
			copied := *r
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAttendance) ListByUser(context.Context, string, int) ([]domain.AttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendance) CountSince(_ context.Context, _ string, since time.Time) (int, error) {
	return f.counts[since], nil
}

func (f *fakeAttendance) ListAdmin(context.Context, time.Time, int) ([]domain.AdminAttendanceRow, error) {
	return nil, nil
}

type fakeMembers struct {
	financialsFn func(ctx context.Context, from, to time.Time) (*domain.FinancialSummary, error)
	monthStart   time.Time
}

func (f *fakeMembers) ListMembers(_ context.Context, monthStart time.Time) ([]domain.MemberSummary, error) {
	f.monthStart = monthStart
	return nil, nil
}

func (f *fakeMembers) Financials(ctx context.Context, from, to time.Time) (*domain.FinancialSummary, error) {
	if f.financialsFn != nil {
		return f.financialsFn(ctx, from, to)
	}
	return &domain.FinancialSummary{}, nil
}

func (f *fakeMembers) Overview(context.Context, time.Time) (*domain.AdminOverview, error) {
	return &domain.AdminOverview{}, nil
}

package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/repository"
)

// memDB backs every repository the router touches with in-memory maps.
type memDB struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	profiles map[string]*domain.Profile
	tokens   map[string]string
	plans    map[string]domain.MembershipPlan
	subs     []domain.Subscription
	products map[string]domain.Product
	orders   []domain.Order
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[string]*domain.User{},
		profiles: map[string]*domain.Profile{},
		tokens:   map[string]string{},
		plans:    map[string]domain.MembershipPlan{},
		products: map[string]domain.Product{},
	}
}

type memUserRepo struct{ db *memDB }

func (r memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	copied := *user
	r.db.users[user.ID] = &copied
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u, ok := r.db.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memProfileRepo struct{ db *memDB }

func (r memProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r memProfileRepo) EnsureExists(_ context.Context, id, fullName string) (*domain.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[id]; !ok {
		r.db.profiles[id] = &domain.Profile{ID: id, FullName: fullName, Role: domain.RoleMember}
	}
	copied := *r.db.profiles[id]
	return &copied, nil
}

func (r memProfileRepo) Update(_ context.Context, id string, fullName *string, avatarURL *string) (*domain.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[id]
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

type memTokenRepo struct{ db *memDB }

func (r memTokenRepo) Save(_ context.Context, sessionID, token string, _ time.Duration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.tokens[sessionID] = token
	return nil
}

func (r memTokenRepo) Get(_ context.Context, sessionID string) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t, ok := r.db.tokens[sessionID]; ok {
		return t, nil
	}
	return "", repository.ErrTokenNotFound
}

func (r memTokenRepo) Delete(_ context.Context, sessionID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.tokens, sessionID)
	return nil
}

type memPlanRepo struct{ db *memDB }

func (r memPlanRepo) ListActive(context.Context) ([]domain.MembershipPlan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.MembershipPlan{}
	for _, p := range r.db.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r memPlanRepo) GetByID(_ context.Context, id string) (*domain.MembershipPlan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.plans[id]; ok {
		return &p, nil
	}
	return nil, pgx.ErrNoRows
}

type memSubscriptionRepo struct{ db *memDB }

func (r memSubscriptionRepo) Query(_ context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Subscription{}
	for i := len(r.db.subs) - 1; i >= 0; i-- {
		s := r.db.subs[i]
		if s.UserID != userID || (filter.ActiveOnly && !s.IsActive) {
			continue
		}
		if filter.EndsAfter != nil && !s.EndDate.After(*filter.EndsAfter) {
			continue
		}
		out = append(out, s)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r memSubscriptionRepo) Replace(_ context.Context, sub *domain.Subscription) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.subs {
		if r.db.subs[i].UserID == sub.UserID {
			r.db.subs[i].IsActive = false
		}
	}
	sub.ID = uuid.NewString()
	r.db.subs = append(r.db.subs, *sub)
	return nil
}

func (r memSubscriptionRepo) Deactivate(_ context.Context, id, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.subs {
		if r.db.subs[i].ID == id && r.db.subs[i].UserID == userID {
			r.db.subs[i].IsActive = false
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memProductRepo struct{ db *memDB }

func (r memProductRepo) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Product{}
	for _, p := range r.db.products {
		if p.IsActive || filter.IncludeInactive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.products[id]; ok {
		return &p, nil
	}
	return nil, pgx.ErrNoRows
}

func (r memProductRepo) Update(_ context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.StockQuantity != nil {
		p.StockQuantity = *update.StockQuantity
	}
	if update.IsActive != nil {
		p.IsActive = *update.IsActive
	}
	r.db.products[id] = p
	return &p, nil
}

func (r memProductRepo) ListCategories(context.Context) ([]domain.ProductCategory, error) {
	return []domain.ProductCategory{}, nil
}

type memOrderRepo struct{ db *memDB }

func (r memOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, item := range order.Items {
		p := r.db.products[item.ProductID]
		if p.StockQuantity < item.Quantity {
			return repository.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		p := r.db.products[item.ProductID]
		p.StockQuantity -= item.Quantity
		r.db.products[item.ProductID] = p
	}
	order.ID = uuid.NewString()
	order.Status = domain.OrderStatusProcessing
	order.PaymentStatus = domain.PaymentStatusCompleted
	r.db.orders = append(r.db.orders, *order)
	return nil
}

func (r memOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.db.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r memOrderRepo) ListAll(context.Context, *domain.OrderStatus, int) ([]domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]domain.Order{}, r.db.orders...), nil
}

func (r memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.orders {
		if r.db.orders[i].ID == id {
			r.db.orders[i].Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memAttendanceRepo struct{}

func (memAttendanceRepo) LatestSince(context.Context, string, time.Time) (*domain.AttendanceRecord, error) {
	return nil, pgx.ErrNoRows
}

func (memAttendanceRepo) CheckIn(_ context.Context, record *domain.AttendanceRecord) error {
	record.ID = uuid.NewString()
	return nil
}

func (memAttendanceRepo) CheckOut(context.Context, string, time.Time) (*domain.AttendanceRecord, error) {
	return nil, pgx.ErrNoRows
}

func (memAttendanceRepo) ListByUser(context.Context, string, int) ([]domain.AttendanceRecord, error) {
	return []domain.AttendanceRecord{}, nil
}

func (memAttendanceRepo) CountSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func (memAttendanceRepo) ListAdmin(context.Context, time.Time, int) ([]domain.AdminAttendanceRow, error) {
	return []domain.AdminAttendanceRow{}, nil
}

type memMemberRepo struct{}

func (memMemberRepo) ListMembers(context.Context, time.Time) ([]domain.MemberSummary, error) {
	return []domain.MemberSummary{}, nil
}

func (memMemberRepo) Financials(_ context.Context, from, _ time.Time) (*domain.FinancialSummary, error) {
	return &domain.FinancialSummary{Month: from.Month().String(), Year: from.Year()}, nil
}

func (memMemberRepo) Overview(context.Context, time.Time) (*domain.AdminOverview, error) {
	return &domain.AdminOverview{TotalMembers: 1}, nil
}

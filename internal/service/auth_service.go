package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/auth"
	"github.com/spec-kit/gym-portal/internal/config"
	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/events"
	"github.com/spec-kit/gym-portal/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrInvalidEmail       = errors.New("unable to validate email address: invalid format")
	ErrNoSession          = errors.New("auth session missing")
)

// AuthService owns credentials, access tokens and the browser-session token mapping.
// Every session change is published on the dispatcher scoped to its session id.
type AuthService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	tokens     repository.SessionTokenRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	ProfileRepo      repository.ProfileRepository
	SessionTokenRepo repository.SessionTokenRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		profiles:   deps.ProfileRepo,
		tokens:     deps.SessionTokenRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// SignUp creates an account and signs the session in.
func (s *AuthService) SignUp(ctx context.Context, sessionID, email, password string, metadata map[string]string) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	clean := make(map[string]string, len(metadata))
	for k, v := range metadata {
		clean[k] = sanitizeText(v)
	}
	user := &domain.User{Email: email, PasswordHash: hash, Metadata: clean}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.startSession(ctx, sessionID, user, events.EventSessionSignedIn)
}

// SignIn verifies credentials and binds a fresh access token to the session.
func (s *AuthService) SignIn(ctx context.Context, sessionID, email, password string) (*domain.Identity, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, sessionID, user, events.EventSessionSignedIn)
}

// Refresh replaces the session's access token with a new one for the same user.
func (s *AuthService) Refresh(ctx context.Context, sessionID string) (*domain.Identity, error) {
	current, err := s.CurrentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoSession
	}
	user, err := s.users.GetByID(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, sessionID, user, events.EventSessionTokenRefreshed)
}

// SignOut drops the session's token. The sign-out event is published even if the token
// was already gone.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	err := s.tokens.Delete(ctx, sessionID)
	s.publish(ctx, events.Event{
		Type:      events.EventSessionSignedOut,
		SessionID: sessionID,
		Payload:   events.SessionPayload{},
	})
	return err
}

// CurrentSession returns the identity bound to the session, or nil when there is none.
// Invalid or expired tokens are discarded.
func (s *AuthService) CurrentSession(ctx context.Context, sessionID string) (*domain.Identity, error) {
	token, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, nil
		}
		return nil, err
	}

	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		s.logger.Info("discarding invalid session token", zap.String("session_id", sessionID), zap.Error(err))
		if delErr := s.tokens.Delete(ctx, sessionID); delErr != nil {
			s.logger.Warn("delete session token", zap.Error(delErr))
		}
		return nil, nil
	}
	return &domain.Identity{
		ID:          claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// FetchProfile returns the user's profile, creating it from sign-up metadata on first access.
func (s *AuthService) FetchProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("creating profile", zap.String("user_id", userID))
	return s.profiles.EnsureExists(ctx, userID, user.FullName())
}

// UpdateProfile edits the display name or avatar. Nil fields are left unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, fullName, avatarURL *string) (*domain.Profile, error) {
	if _, err := s.FetchProfile(ctx, userID); err != nil {
		return nil, err
	}
	if fullName != nil {
		clean := sanitizeText(*fullName)
		fullName = &clean
	}
	if avatarURL != nil {
		clean := strings.TrimSpace(*avatarURL)
		avatarURL = &clean
	}
	return s.profiles.Update(ctx, userID, fullName, avatarURL)
}

func (s *AuthService) startSession(ctx context.Context, sessionID string, user *domain.User, eventType events.EventType) (*domain.Identity, error) {
	issued, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, sessionID, issued.Token, issued.ExpiresAt.Sub(issued.IssuedAt)); err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		ID:          user.ID,
		Email:       user.Email,
		AccessToken: issued.Token,
		IssuedAt:    issued.IssuedAt,
		ExpiresAt:   issued.ExpiresAt,
	}
	s.publish(ctx, events.Event{
		Type:      eventType,
		SessionID: sessionID,
		UserID:    user.ID,
		Payload:   events.SessionPayload{Identity: identity},
	})
	return identity, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

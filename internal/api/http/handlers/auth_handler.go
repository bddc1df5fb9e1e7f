package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/api/dto"
	"github.com/spec-kit/gym-portal/internal/authz"
	"github.com/spec-kit/gym-portal/internal/observability"
	"github.com/spec-kit/gym-portal/internal/service"
	"github.com/spec-kit/gym-portal/internal/session"
	apperrors "github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

// AuthHandler exposes login, signup and logout for browser sessions.
type AuthHandler struct {
	auth    *service.AuthService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, metrics: metrics, logger: logger}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	err = client.Store.Login(c.UserContext(), req.Email, req.Password)
	h.metrics.RecordAuthAttempt("login", err == nil)
	if err != nil {
		return authFailure(err, http.StatusUnauthorized)
	}
	return h.respondSession(c, client.Store, http.StatusOK)
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	var req dto.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	err = client.Store.Signup(c.UserContext(), req.Email, req.Password, req.FullName)
	h.metrics.RecordAuthAttempt("signup", err == nil)
	if err != nil {
		return authFailure(err, http.StatusBadRequest)
	}
	return h.respondSession(c, client.Store, http.StatusCreated)
}

// Logout handles POST /auth/logout. The local session is cleared even when the
// backend sign-out fails.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	resp := fiber.Map{"redirect_to": authz.PathLogin}
	if err := client.Store.Logout(c.UserContext()); err != nil {
		h.logger.Warn("logout", zap.String("session_id", client.ID), zap.Error(err))
		resp["warning"] = err.Error()
	}
	h.metrics.RecordAuthAttempt("logout", true)
	return c.JSON(resp)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	if _, err := h.auth.Refresh(c.UserContext(), client.ID); err != nil {
		if errors.Is(err, service.ErrNoSession) {
			return apperrors.NewUnauthorized(err.Error())
		}
		return err
	}
	return h.respondSession(c, client.Store, http.StatusOK)
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	snap := client.Store.Snapshot()
	return c.JSON(fiber.Map{"data": sessionResponse(snap)})
}

func (h *AuthHandler) respondSession(c *fiber.Ctx, store *session.Store, status int) error {
	// Let the profile fetch started by the sign-in settle so the role is known.
	if err := store.Sync(c.UserContext()); err != nil {
		h.logger.Warn("session sync", zap.Error(err))
	}
	snap := store.Snapshot()
	resp := sessionResponse(snap)
	if snap.Authenticated() {
		resp.RedirectTo = authz.PathUserHome
		if snap.IsAdmin {
			resp.RedirectTo = authz.PathAdminHome
		}
	}
	return c.Status(status).JSON(fiber.Map{"data": resp})
}

func sessionResponse(snap session.Snapshot) dto.SessionResponse {
	return dto.SessionResponse{
		State:   snap.State,
		User:    snap.Identity,
		Profile: snap.Profile,
		IsAdmin: snap.IsAdmin,
	}
}

// authFailure surfaces the backend's message unchanged.
func authFailure(err error, status int) error {
	var authErr *session.AuthError
	if !errors.As(err, &authErr) {
		return err
	}
	if authErr.Timeout() {
		return apperrors.NewTimeout(authErr.Message, authErr)
	}
	code := "AUTH_FAILED"
	if status == http.StatusBadRequest {
		code = "SIGNUP_FAILED"
	}
	return apperrors.NewDomainError(code, authErr.Message, status, nil)
}

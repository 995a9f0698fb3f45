package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

// SessionTracker keeps the presence heartbeat of signed-in sessions alive.
type SessionTracker interface {
	Open(p domain.Principal)
	Close(p domain.Principal)
	Active(p domain.Principal) bool
	Touch(p domain.Principal)
}

type AuthHandler struct {
	accounts ports.AccountService
	auth     ports.AuthService
	presence ports.PresenceService
	sessions SessionTracker
}

func NewAuthHandler(accounts ports.AccountService, auth ports.AuthService, presence ports.PresenceService, sessions SessionTracker) *AuthHandler {
	return &AuthHandler{accounts: accounts, auth: auth, presence: presence, sessions: sessions}
}

// SetupStatus reports whether the first master still has to be created.
//
// @Summary      Setup status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  setupStatusResponse
// @Router       /auth/setup [get]
func (h *AuthHandler) SetupStatus(c echo.Context) error {
	required, err := h.accounts.SetupRequired(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupStatusResponse{SetupRequired: required})
}

// Setup creates the first master account on the temporary credential.
//
// @Summary      Create the first master account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      setupRequest  true  "Master identity"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/setup [post]
func (h *AuthHandler) Setup(c echo.Context) error {
	var req setupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acc, err := h.accounts.Bootstrap(c.Request().Context(), req.Email, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(*acc))
}

// Login runs the sign-in state machine. Rejections carry the reason and,
// for denied accounts, the recorded justification.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  authResponse
// @Failure      403   {object}  authResponse
// @Failure      404   {object}  authResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respond(c, res)
}

// ChangePassword completes the mandatory password change started by Login.
//
// @Summary      Change the temporary password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Change token and new password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email, err := h.auth.VerifyChangeToken(req.ChangeToken)
	if err != nil {
		return err
	}
	res, err := h.auth.ChangePassword(c.Request().Context(), email, req.NewPassword, req.Confirm)
	if err != nil {
		return err
	}
	return h.respond(c, res)
}

// Session returns the principal of the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if !h.sessions.Active(p) {
		h.sessions.Open(p)
	}
	return c.JSON(http.StatusOK, toPrincipalResponse(&p))
}

// Heartbeat records that the client is still active.
//
// @Summary      Presence heartbeat
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/session/heartbeat [post]
func (h *AuthHandler) Heartbeat(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.presence.Heartbeat(c.Request().Context(), p.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Logout ends the server-side heartbeat of this session only.
//
// @Summary      Sign out
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Router       /v1/session [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	h.sessions.Close(p)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) respond(c echo.Context, res *ports.AuthResult) error {
	switch res.State {
	case ports.AuthAuthenticated:
		if res.Principal != nil {
			h.sessions.Open(*res.Principal)
		}
		return c.JSON(http.StatusOK, toAuthResponse(res))
	case ports.AuthMustChangePassword:
		return c.JSON(http.StatusOK, toAuthResponse(res))
	}

	status := http.StatusForbidden
	switch res.Reason {
	case ports.RejectNotFound:
		status = http.StatusNotFound
	case ports.RejectBadCredentials:
		status = http.StatusUnauthorized
	}
	return c.JSON(status, toAuthResponse(res))
}

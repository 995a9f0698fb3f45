package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

// AccountHandler exposes the account directory and the approval workflow.
type AccountHandler struct {
	accounts  ports.AccountService
	approvals ports.ApprovalService
}

func NewAccountHandler(accounts ports.AccountService, approvals ports.ApprovalService) *AccountHandler {
	return &AccountHandler{accounts: accounts, approvals: approvals}
}

// List handles GET /v1/accounts.
//
// @Summary      List manageable accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	accounts, err := h.accounts.ListAccounts(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponses(accounts))
}

// Create handles POST /v1/accounts. Accounts created by anyone but the
// master start pending.
//
// @Summary      Create an account or access request
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acc, err := h.accounts.CreateAccount(c.Request().Context(), p, ports.CreateAccountInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
		Unit:     domain.Unit(req.Unit),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(*acc))
}

// Update handles PATCH /v1/accounts/:email.
//
// @Summary      Edit an account profile (master only)
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string                true  "Account email"
// @Param        body   body      updateAccountRequest  true  "Fields to change"
// @Success      200    {object}  accountResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/accounts/{email} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acc, err := h.accounts.UpdateProfile(c.Request().Context(), p, c.Param("email"), toUpdateAccountInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(*acc))
}

// Block handles PUT /v1/accounts/:email/block.
//
// @Summary      Block or unblock an account (master only)
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string        true  "Account email"
// @Param        body   body      blockRequest  true  "Block state"
// @Success      200    {object}  accountResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/accounts/{email}/block [put]
func (h *AccountHandler) Block(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	acc, err := h.accounts.SetBlocked(c.Request().Context(), p, c.Param("email"), req.Blocked)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(*acc))
}

// Remove handles DELETE /v1/accounts/:email.
//
// @Summary      Remove an account permanently (master only)
// @Tags         accounts
// @Security     BearerAuth
// @Param        email  path  string  true  "Account email"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{email} [delete]
func (h *AccountHandler) Remove(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.accounts.RemoveAccount(c.Request().Context(), p, c.Param("email")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Pending handles GET /v1/requests.
//
// @Summary      List pending access requests (master only)
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/requests [get]
func (h *AccountHandler) Pending(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	pending, err := h.approvals.ListPending(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponses(pending))
}

// Decide handles POST /v1/requests/:email/decision.
//
// @Summary      Approve or deny an access request (master only)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string           true  "Account email"
// @Param        body   body      decisionRequest  true  "Decision"
// @Success      200    {object}  accountResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/requests/{email}/decision [post]
func (h *AccountHandler) Decide(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acc, err := h.approvals.Decide(c.Request().Context(), p, c.Param("email"), ports.Decision(req.Decision), req.Justification)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(*acc))
}

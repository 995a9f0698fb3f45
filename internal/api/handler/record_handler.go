package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

// RecordHandler handles custody record operations.
type RecordHandler struct {
	service ports.RecordService
}

func NewRecordHandler(service ports.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// List handles GET /v1/records.
//
// @Summary      List visible records
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        context  query     string  false  "Viewing context (unit); ignored below global admin"
// @Param        q        query     string  false  "Search subject name, file number or destination"
// @Param        date     query     string  false  "Scheduled date (YYYY-MM-DD)"
// @Param        type     query     string  false  "Record type"
// @Param        status   query     string  false  "Record status"
// @Success      200      {object}  recordListResponse
// @Failure      401      {object}  errorResponse
// @Router       /v1/records [get]
func (h *RecordHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	filter := ports.RecordFilter{
		Context: viewContext(c),
		Search:  c.QueryParam("q"),
		Date:    c.QueryParam("date"),
		Type:    domain.RecordType(c.QueryParam("type")),
		Status:  domain.RecordStatus(c.QueryParam("status")),
	}
	records, err := h.service.ListVisible(c.Request().Context(), p, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recordListResponse{
		Context: string(domain.EffectiveContext(p, filter.Context)),
		Records: toRecordResponses(records),
	})
}

// Summary handles GET /v1/records/summary.
//
// @Summary      Dashboard counters
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        context  query     string  false  "Viewing context (unit)"
// @Success      200      {object}  summaryResponse
// @Router       /v1/records/summary [get]
func (h *RecordHandler) Summary(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	vc := viewContext(c)
	sum, err := h.service.Summary(c.Request().Context(), p, vc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryResponse{
		Context:         string(domain.EffectiveContext(p, vc)),
		ActiveEscorts:   sum.ActiveEscorts,
		Interned:        sum.Interned,
		HighRiskOpen:    sum.HighRiskOpen,
		Closed:          sum.Closed,
		PendingRequests: sum.PendingRequests,
	})
}

// Create handles POST /v1/records.
//
// @Summary      Create a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRecordRequest  true  "Record"
// @Success      201   {object}  recordResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/records [post]
func (h *RecordHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createRecordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.CreateRecord(c.Request().Context(), p, toCreateRecordInput(req))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/records/"+r.ID)
	return c.JSON(http.StatusCreated, toRecordResponse(*r))
}

// Update handles PATCH /v1/records/:id.
//
// @Summary      Edit a record (master only)
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Record ID (PRT-XXXXXX)"
// @Param        body  body      updateRecordRequest  true  "Fields to change"
// @Success      200   {object}  recordResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/records/{id} [patch]
func (h *RecordHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateRecordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.EditRecord(c.Request().Context(), p, c.Param("id"), toUpdateRecordInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordResponse(*r))
}

// Delete handles DELETE /v1/records/:id.
//
// @Summary      Delete a record (master only)
// @Tags         records
// @Security     BearerAuth
// @Param        id  path  string  true  "Record ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/records/{id} [delete]
func (h *RecordHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteRecord(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Complete handles POST /v1/records/:id/complete (discharge).
//
// @Summary      Complete (discharge) a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true   "Record ID"
// @Param        body  body      completeRecordRequest  false  "Completion time (defaults to now)"
// @Success      200   {object}  recordResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/records/{id}/complete [post]
func (h *RecordHandler) Complete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req completeRecordRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}
	var at time.Time
	if req.CompletedAt != nil {
		at = *req.CompletedAt
	}
	r, err := h.service.CompleteRecord(c.Request().Context(), p, c.Param("id"), at)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordResponse(*r))
}

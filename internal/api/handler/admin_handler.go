package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/core/ports"
)

// AdminHandler serves the master-only views: audit, presence and backup.
type AdminHandler struct {
	audit    ports.AuditService
	presence ports.PresenceService
	backup   ports.BackupService
}

func NewAdminHandler(audit ports.AuditService, presence ports.PresenceService, backup ports.BackupService) *AdminHandler {
	return &AdminHandler{audit: audit, presence: presence, backup: backup}
}

// Audit handles GET /v1/audit.
//
// @Summary      Audit trail, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   auditEntryResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/audit [get]
func (h *AdminHandler) Audit(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	trail, err := h.audit.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuditResponses(trail))
}

// Presence handles GET /v1/presence.
//
// @Summary      Presence roster
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   presenceResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/presence [get]
func (h *AdminHandler) Presence(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	roster, err := h.presence.Roster(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPresenceResponses(roster))
}

// Backup handles GET /v1/backup and returns the snapshot as a download.
//
// @Summary      Export a maintenance snapshot
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  snapshotResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/backup [get]
func (h *AdminHandler) Backup(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	snap, err := h.backup.Export(c.Request().Context(), p)
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("custody-backup-%s.json", snap.GeneratedAt.Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.JSON(http.StatusOK, snapshotResponse{
		GeneratedAt: snap.GeneratedAt,
		GeneratedBy: snap.GeneratedBy,
		Accounts:    toAccountResponses(snap.Accounts),
		Records:     toRecordResponses(snap.Records),
		AuditTrail:  toAuditResponses(snap.AuditTrail),
	})
}

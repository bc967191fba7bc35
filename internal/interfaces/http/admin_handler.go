package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-spa/internal/application/audit"
	"github.com/jhoicas/Tienda-spa/internal/application/dto"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// AdminHandler vistas de administración: panel y auditoría con exportes.
type AdminHandler struct {
	audits *audit.Service
	log    *logger.Logger
}

func NewAdminHandler(audits *audit.Service, log *logger.Logger) *AdminHandler {
	return &AdminHandler{audits: audits, log: log.Component("admin_handler")}
}

// Dashboard resumen del panel: totales de auditoría por estado.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	h.audits.Log(audit.Entry{
		Action:   entity.AuditActionView,
		Resource: "ADMIN_DASHBOARD",
		Status:   entity.AuditStatusSuccess,
	})

	entries := h.audits.List(entity.AuditFilter{})
	var failures int
	for _, e := range entries {
		if e.Status == entity.AuditStatusFailure {
			failures++
		}
	}
	return c.JSON(fiber.Map{
		"auditEntries":  len(entries),
		"auditFailures": failures,
	})
}

// AuditLogs lista las entradas locales aplicando filtros de query, paginadas
// con limit/offset.
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	page.DefaultPage()

	h.audits.Log(audit.Entry{
		Action:   entity.AuditActionView,
		Resource: "AUDIT_LOGS",
		Status:   entity.AuditStatusSuccess,
	})

	entries, total := h.audits.ListPage(filter, page.Limit, page.Offset)
	return c.JSON(fiber.Map{
		"items": entries,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// AuditLogsRemote consulta el histórico consolidado en el backend.
func (h *AdminHandler) AuditLogsRemote(c *fiber.Ctx) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	entries, err := h.audits.FetchRemote(c.UserContext(), filter)
	if err != nil {
		return apiFailure(c, err, "no se pudo consultar la auditoría remota")
	}
	return c.JSON(entries)
}

// ExportCSV descarga las entradas locales en CSV (ISO-8859-1).
func (h *AdminHandler) ExportCSV(c *fiber.Ctx) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	h.audits.Log(audit.Entry{
		Action:   entity.AuditActionExport,
		Resource: "AUDIT_LOGS",
		Details:  map[string]string{"format": "csv"},
		Status:   entity.AuditStatusSuccess,
	})

	c.Set(fiber.HeaderContentType, "text/csv; charset=ISO-8859-1")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="auditoria.csv"`)
	return h.audits.ExportCSV(c.Response().BodyWriter(), filter)
}

// ExportPDF descarga el reporte PDF de auditoría.
func (h *AdminHandler) ExportPDF(c *fiber.Ctx) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	raw, err := h.audits.ExportPDF(c.UserContext(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("fallo generando pdf de auditoría")
		return c.Status(fiber.StatusInternalServerError).
			JSON(dto.ErrorResponse{Code: "PDF_ERROR", Message: "no se pudo generar el reporte"})
	}

	h.audits.Log(audit.Entry{
		Action:   entity.AuditActionExport,
		Resource: "AUDIT_LOGS",
		Details:  map[string]string{"format": "pdf"},
		Status:   entity.AuditStatusSuccess,
	})

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="auditoria.pdf"`)
	return c.Send(raw)
}

func auditFilterFromQuery(c *fiber.Ctx) (entity.AuditFilter, error) {
	filter := entity.AuditFilter{
		UserID:   c.Query("userId"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Status:   c.Query("status"),
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	return filter, nil
}

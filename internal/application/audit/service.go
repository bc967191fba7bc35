// Package audit implementa el registro de auditoría del cliente: entradas
// append-only creadas como efecto secundario de las transiciones de auth y de
// las vistas de administración, replicadas best-effort al backend.
package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/apiclient"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// Entry datos mínimos para registrar una acción; el servicio completa
// identidad, id, timestamp y user agent.
type Entry struct {
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]string
	Status     string // SUCCESS | FAILURE
}

// ReportGenerator puerto de generación del reporte PDF de auditoría.
type ReportGenerator interface {
	GenerateAuditReport(ctx context.Context, entries []entity.AuditLog) ([]byte, error)
}

// Service registro de auditoría: copia local en memoria + réplica best-effort
// al endpoint del backend (los fallos de réplica solo se loguean).
type Service struct {
	st        *store.Store
	api       *apiclient.Client
	pdf       ReportGenerator
	log       *logger.Logger
	userAgent string

	mu      sync.Mutex
	entries []entity.AuditLog
}

// NewService construye el servicio. pdf puede ser nil si no se exporta PDF.
func NewService(st *store.Store, api *apiclient.Client, pdf ReportGenerator, userAgent string, log *logger.Logger) *Service {
	return &Service{
		st:        st,
		api:       api,
		pdf:       pdf,
		log:       log.Component("audit"),
		userAgent: userAgent,
	}
}

// Log registra una acción. La identidad sale del snapshot actual del store;
// sin sesión se registra como anónimo. La réplica al backend corre aparte y
// nunca bloquea ni falla hacia el que llama.
func (s *Service) Log(in Entry) entity.AuditLog {
	snap := s.st.Snapshot()
	userID := "anonymous"
	userName := "Anonymous"
	if u := store.CurrentUser(snap.Auth); u != nil {
		userID = u.ID
		userName = u.Name
	}

	log := entity.AuditLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		UserName:   userName,
		Action:     in.Action,
		Resource:   in.Resource,
		ResourceID: in.ResourceID,
		Details:    in.Details,
		UserAgent:  s.userAgent,
		Timestamp:  time.Now(),
		Status:     in.Status,
	}

	s.mu.Lock()
	s.entries = append(s.entries, log)
	s.mu.Unlock()

	go s.mirror(log)
	return log
}

// mirror replica la entrada al backend; el fallo se ignora (solo log).
func (s *Service) mirror(entry entity.AuditLog) {
	if err := s.api.Post(context.Background(), "/audit/logs", entry, nil); err != nil {
		s.log.Warn().Err(err).Str("audit_id", entry.ID).Msg("réplica de auditoría fallida")
		return
	}
	s.log.Trace().Str("audit_id", entry.ID).Msg("entrada de auditoría replicada")
}

// List devuelve las entradas locales que pasan el filtro, de más reciente a
// más antigua.
func (s *Service) List(filter entity.AuditFilter) []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.AuditLog, 0, len(s.entries))
	for _, e := range s.entries {
		if matches(e, filter) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ListPage devuelve la ventana [offset, offset+limit) de las entradas ya
// filtradas y ordenadas, junto con el total filtrado.
func (s *Service) ListPage(filter entity.AuditFilter, limit, offset int) ([]entity.AuditLog, int) {
	all := s.List(filter)
	total := len(all)
	if offset >= total {
		return []entity.AuditLog{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total
}

// FetchRemote consulta el registro consolidado del backend con filtros.
func (s *Service) FetchRemote(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditLog, error) {
	opts := []apiclient.Option{}
	if filter.UserID != "" {
		opts = append(opts, apiclient.WithQuery("userId", filter.UserID))
	}
	if filter.Action != "" {
		opts = append(opts, apiclient.WithQuery("action", filter.Action))
	}
	if filter.Resource != "" {
		opts = append(opts, apiclient.WithQuery("resource", filter.Resource))
	}
	if filter.Status != "" {
		opts = append(opts, apiclient.WithQuery("status", filter.Status))
	}
	if filter.StartDate != nil {
		opts = append(opts, apiclient.WithQuery("startDate", filter.StartDate.Format(time.RFC3339)))
	}
	if filter.EndDate != nil {
		opts = append(opts, apiclient.WithQuery("endDate", filter.EndDate.Format(time.RFC3339)))
	}
	var logs []entity.AuditLog
	if err := s.api.Get(ctx, "/audit/logs", &logs, opts...); err != nil {
		return nil, err
	}
	return logs, nil
}

// ExportCSV escribe las entradas filtradas como CSV en ISO-8859-1, el
// encoding que las hojas de cálculo de la región abren sin ensalada de tildes.
func (s *Service) ExportCSV(w io.Writer, filter entity.AuditFilter) error {
	enc := transform.NewWriter(w, charmap.ISO8859_1.NewEncoder())
	cw := csv.NewWriter(enc)

	header := []string{"id", "fecha", "usuario", "accion", "recurso", "recurso_id", "estado"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("escribir encabezado CSV: %w", err)
	}
	for _, e := range s.List(filter) {
		row := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			e.UserName,
			e.Action,
			e.Resource,
			e.ResourceID,
			e.Status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("escribir fila CSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("volcar CSV: %w", err)
	}
	return enc.Close()
}

// ExportPDF genera el reporte PDF de las entradas filtradas.
func (s *Service) ExportPDF(ctx context.Context, filter entity.AuditFilter) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("generador PDF no configurado")
	}
	return s.pdf.GenerateAuditReport(ctx, s.List(filter))
}

func matches(e entity.AuditLog, f entity.AuditFilter) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Resource != "" && e.Resource != f.Resource {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

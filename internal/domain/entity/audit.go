package entity

import "time"

// Acciones de auditoría.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionDelete       = "DELETE"
	AuditActionView         = "VIEW"
	AuditActionExport       = "EXPORT"
	AuditActionAccessDenied = "ACCESS_DENIED"
)

// Estados de una entrada de auditoría.
const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailure = "FAILURE"
)

// AuditLog una entrada del registro de auditoría. Append-only: se crea como
// efecto secundario de las transiciones de auth y de las vistas de admin,
// y se replica best-effort al backend.
type AuditLog struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	UserName   string            `json:"user_name"`
	Action     string            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Status     string            `json:"status"` // SUCCESS | FAILURE
}

// AuditFilter filtros para listar entradas de auditoría.
type AuditFilter struct {
	UserID    string
	Action    string
	Resource  string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

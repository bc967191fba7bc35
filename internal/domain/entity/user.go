package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "ADMIN"
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
)

// User representa la identidad de la sesión activa. Se reemplaza completo en
// cada login o hidratación desde almacenamiento; nunca se edita campo a campo.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"` // ADMIN, USER, MODERATOR
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

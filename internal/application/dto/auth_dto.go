package dto

// LoginRequest credenciales enviadas por el formulario de login.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

// RefreshRequest cuerpo de renovación de sesión.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SessionView estado de sesión expuesto por la shell.
type SessionView struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
	Error         string `json:"error,omitempty"`
}

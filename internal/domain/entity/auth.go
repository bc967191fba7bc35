package entity

// AuthState el estado de la sesión. IsAuthenticated solo lo ponen en true las
// transiciones de login exitoso o hidratación con token vigente; la expiración
// se verifica al hidratar y en el pipeline HTTP, no de forma continua.
type AuthState struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	RefreshToken    string `json:"refresh_token"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
	Error           string `json:"error"`
}

// LoginCredentials credenciales de entrada para el login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse respuesta del backend para login y refresh.
type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // segundos
}

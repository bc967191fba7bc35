package store

import "github.com/jhoicas/Tienda-spa/internal/domain/entity"

// Selectores de auth: vistas derivadas puras sobre un snapshot.

// CurrentUser usuario en sesión o nil.
func CurrentUser(s entity.AuthState) *entity.User {
	return s.User
}

// Token access token actual ("" si no hay sesión).
func Token(s entity.AuthState) string {
	return s.Token
}

// RefreshToken refresh token actual ("" si no hay).
func RefreshToken(s entity.AuthState) string {
	return s.RefreshToken
}

// IsAuthenticated true solo si una transición de login, refresh o hidratación
// exitosa lo estableció.
func IsAuthenticated(s entity.AuthState) bool {
	return s.IsAuthenticated
}

// IsLoading hay una operación de auth en curso.
func IsLoading(s entity.AuthState) bool {
	return s.IsLoading
}

// AuthError último error de auth ("" si no hay).
func AuthError(s entity.AuthState) string {
	return s.Error
}

// UserRole rol del usuario en sesión ("" si no hay usuario).
func UserRole(s entity.AuthState) string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// IsAdmin el usuario en sesión es ADMIN.
func IsAdmin(s entity.AuthState) bool {
	return UserRole(s) == entity.RoleAdmin
}

// IsModerator el usuario en sesión es MODERATOR o ADMIN.
func IsModerator(s entity.AuthState) bool {
	role := UserRole(s)
	return role == entity.RoleModerator || role == entity.RoleAdmin
}

// UserEmail email del usuario en sesión ("" si no hay).
func UserEmail(s entity.AuthState) string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}

// UserName nombre del usuario en sesión ("" si no hay).
func UserName(s entity.AuthState) string {
	if s.User == nil {
		return ""
	}
	return s.User.Name
}

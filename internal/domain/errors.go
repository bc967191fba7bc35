package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrUserNotFound   = errors.New("usuario no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrTokenExpired   = errors.New("token expirado")
	ErrTokenInvalid   = errors.New("token inválido")
	ErrSessionExpired = errors.New("sesión expirada")
)

// Package token concentra el manejo de JWT de la aplicación. El cliente nunca
// conoce el secreto de firma: para decidir expiración decodifica el payload
// sin verificar firma (cualquier fallo de decodificación cuenta como
// expirado). Generate/Parse con HS256 existen para el backend de desarrollo.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los campos propios de la
// aplicación. Role permite decisiones RBAC sin consultar al backend.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // ADMIN | USER | MODERATOR
}

// Generate genera un token JWT firmado con email y role como claims.
func Generate(secret, userID, email, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		Email: email,
		Role:  role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse valida firma y vigencia del token y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: secret vacío")
	}
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}

// DecodeUnverified decodifica el payload (base64url) SIN verificar la firma.
// Es la única lectura posible del lado del cliente, que no tiene el secreto.
func DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, fmt.Errorf("decodificar token: %w", err)
	}
	return claims, nil
}

// IsExpired true si el token ya expiró. Un token indescifrable o sin claim
// exp se trata como expirado; nunca se propaga el error de decodificación.
func IsExpired(tokenString string) bool {
	claims, err := DecodeUnverified(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.Time.After(time.Now())
}

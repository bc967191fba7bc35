// Package storage implementa el adaptador de almacenamiento clave-valor
// durable del cliente (el análogo de localStorage). Cada valor es un string
// opaco; cada escritura es un snapshot completo, nunca parcial. Backends:
// memoria (tests), archivo JSON, Redis y PostgreSQL.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound se devuelve cuando la clave no existe en el backend.
var ErrKeyNotFound = errors.New("clave no encontrada")

// Store contrato del almacenamiento clave-valor durable.
type Store interface {
	// Get devuelve el valor de la clave o ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set escribe el valor completo de la clave (sobrescribe).
	Set(ctx context.Context, key, value string) error
	// Remove elimina la clave; no es error si no existe.
	Remove(ctx context.Context, key string) error
}

// Package store implementa el núcleo de estado del cliente: un AppState
// explícito (auth + carrito), eventos como unión cerrada de tipos, reducers
// puros y un coordinador que serializa las transiciones en un único goroutine.
//
// Flujo: Dispatch(evento) → el run loop aplica el reducer correspondiente →
// los listeners (efectos) reciben el evento junto con el snapshot posterior a
// la transición → los efectos hacen I/O asíncrono y despachan eventos de
// seguimiento. Las vistas derivadas se leen por demanda con los selectores.
package store

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
)

// eventName nombre corto del evento para logs.
func eventName(ev Event) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", ev), "store.")
}

// Event marca la unión cerrada de eventos del store. Solo los tipos de este
// paquete pueden implementarla: un evento nuevo obliga a tocar el reducer.
type Event interface {
	isEvent()
}

// AuthEvent eventos que consume el reducer de auth.
type AuthEvent interface {
	Event
	isAuthEvent()
}

// CartEvent eventos que consume el reducer del carrito.
type CartEvent interface {
	Event
	isCartEvent()
}

// ── Eventos de auth ───────────────────────────────────────────────────────────

// LoginRequested intención de login; el payload lo consume el efecto, no el reducer.
type LoginRequested struct {
	Credentials entity.LoginCredentials
}

// LoginSucceeded login exitoso con la respuesta completa del backend.
type LoginSucceeded struct {
	Response entity.AuthResponse
}

// LoginFailed login fallido con el mensaje normalizado.
type LoginFailed struct {
	Error string
}

// LogoutRequested intención de logout.
type LogoutRequested struct{}

// LogoutSucceeded cierre de sesión completado (siempre se emite, falle o no el remoto).
type LogoutSucceeded struct{}

// RefreshRequested intención de renovar el access token.
type RefreshRequested struct{}

// RefreshSucceeded tokens renovados. No toca user ni is_authenticated.
type RefreshSucceeded struct {
	Token        string
	RefreshToken string
}

// RefreshFailed renovación fallida.
type RefreshFailed struct {
	Error string
}

// HydrateAuthRequested arranque: intención de cargar la sesión persistida.
type HydrateAuthRequested struct{}

// HydrateAuthSucceeded sesión restaurada desde almacenamiento con token vigente.
type HydrateAuthSucceeded struct {
	User         entity.User
	Token        string
	RefreshToken string
}

// UserUpdated reemplazo completo del usuario en sesión.
type UserUpdated struct {
	User entity.User
}

// AuthCleared reinicio total del estado de auth al inicial.
type AuthCleared struct{}

func (LoginRequested) isEvent()       {}
func (LoginSucceeded) isEvent()       {}
func (LoginFailed) isEvent()          {}
func (LogoutRequested) isEvent()      {}
func (LogoutSucceeded) isEvent()      {}
func (RefreshRequested) isEvent()     {}
func (RefreshSucceeded) isEvent()     {}
func (RefreshFailed) isEvent()        {}
func (HydrateAuthRequested) isEvent() {}
func (HydrateAuthSucceeded) isEvent() {}
func (UserUpdated) isEvent()          {}
func (AuthCleared) isEvent()          {}

func (LoginRequested) isAuthEvent()       {}
func (LoginSucceeded) isAuthEvent()       {}
func (LoginFailed) isAuthEvent()          {}
func (LogoutRequested) isAuthEvent()      {}
func (LogoutSucceeded) isAuthEvent()      {}
func (RefreshRequested) isAuthEvent()     {}
func (RefreshSucceeded) isAuthEvent()     {}
func (RefreshFailed) isAuthEvent()        {}
func (HydrateAuthRequested) isAuthEvent() {}
func (HydrateAuthSucceeded) isAuthEvent() {}
func (UserUpdated) isAuthEvent()          {}
func (AuthCleared) isAuthEvent()          {}

// ── Eventos del carrito ───────────────────────────────────────────────────────

// CartItemAdded agrega quantity unidades del producto (acumula si ya existe).
type CartItemAdded struct {
	Product  entity.Product
	Quantity int
}

// CartItemRemoved elimina la línea del producto; no-op si no existe.
type CartItemRemoved struct {
	ProductID int64
}

// CartQuantityUpdated fija la cantidad de la línea; <= 0 equivale a eliminarla.
type CartQuantityUpdated struct {
	ProductID int64
	Quantity  int
}

// CartCleared vacía el carrito.
type CartCleared struct{}

// CartLoadRequested arranque: intención de hidratar el carrito persistido.
type CartLoadRequested struct{}

// CartLoadSucceeded reemplaza el carrito completo con el snapshot cargado.
type CartLoadSucceeded struct {
	Cart entity.CartState
}

func (CartItemAdded) isEvent()       {}
func (CartItemRemoved) isEvent()     {}
func (CartQuantityUpdated) isEvent() {}
func (CartCleared) isEvent()         {}
func (CartLoadRequested) isEvent()   {}
func (CartLoadSucceeded) isEvent()   {}

func (CartItemAdded) isCartEvent()       {}
func (CartItemRemoved) isCartEvent()     {}
func (CartQuantityUpdated) isCartEvent() {}
func (CartCleared) isCartEvent()         {}
func (CartLoadRequested) isCartEvent()   {}
func (CartLoadSucceeded) isCartEvent()   {}

package http

import (
	"net/url"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
)

// SessionNavigator acumula redirecciones forzadas por la capa de
// red (sesión expirada, acceso prohibido). La siguiente petición
// que pase por ForcedRedirect consume el destino pendiente.
type SessionNavigator struct {
	pending atomic.Value // string
}

func NewSessionNavigator() *SessionNavigator {
	n := &SessionNavigator{}
	n.pending.Store("")
	return n
}

func (n *SessionNavigator) ToLogin(returnURL string) {
	target := "/login"
	if returnURL != "" {
		target += "?returnUrl=" + url.QueryEscape(returnURL)
	}
	n.pending.Store(target)
}

func (n *SessionNavigator) ToUnauthorized() {
	n.pending.Store("/unauthorized")
}

// Consume devuelve y limpia el destino pendiente, si lo hay.
func (n *SessionNavigator) Consume() string {
	target, _ := n.pending.Swap("").(string)
	return target
}

// ForcedRedirect aplica la redirección pendiente del navegador de
// sesión antes de servir cualquier ruta privada.
func ForcedRedirect(nav *SessionNavigator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if target := nav.Consume(); target != "" && c.Path() != target {
			return c.Redirect(target, fiber.StatusFound)
		}
		return c.Next()
	}
}

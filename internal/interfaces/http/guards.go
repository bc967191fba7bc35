package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-spa/internal/store"
)

// ─────────────────────────────────────────────────────────────
// Guardias de ruta
// ─────────────────────────────────────────────────────────────

// RequireAuth protege rutas privadas. Si no hay sesión activa
// redirige a /login preservando la URL solicitada en returnUrl.
func RequireAuth(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := st.Snapshot()
		if !store.IsAuthenticated(snap.Auth) {
			target := "/login?returnUrl=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect(target, fiber.StatusFound)
		}
		return c.Next()
	}
}

// GuestOnly protege rutas públicas de sesión (login). Un usuario
// ya autenticado es redirigido a la raíz.
func GuestOnly(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := st.Snapshot()
		if store.IsAuthenticated(snap.Auth) {
			return c.Redirect("/", fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireRole exige que el rol del usuario esté dentro de los
// permitidos. Sin sesión redirige a /login; con sesión pero sin
// rol suficiente redirige a /unauthorized.
func RequireRole(st *store.Store, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		snap := st.Snapshot()
		if !store.IsAuthenticated(snap.Auth) {
			target := "/login?returnUrl=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect(target, fiber.StatusFound)
		}
		if _, ok := allowed[store.UserRole(snap.Auth)]; !ok {
			return c.Redirect("/unauthorized", fiber.StatusFound)
		}
		return c.Next()
	}
}

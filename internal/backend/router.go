package backend

import (
	"github.com/gofiber/fiber/v2"
)

// Router registra las rutas de la API de desarrollo.
func Router(app *fiber.App, h *Handler) {
	auth := app.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout)

	app.Get("/products", h.Products)
	app.Get("/products/:id", h.Product)

	audit := app.Group("/audit")
	audit.Post("/logs", h.AppendAudit)
	audit.Get("/logs", h.ListAudit)
}

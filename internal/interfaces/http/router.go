package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-spa/internal/application/audit"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/apiclient"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// RouterDeps dependencias compartidas por las rutas de la shell.
type RouterDeps struct {
	Store     *store.Store
	API       *apiclient.Client
	Audits    *audit.Service
	Navigator *SessionNavigator
	Logger    *logger.Logger
}

// Router registra las rutas de la shell con sus guardias.
func Router(app *fiber.App, deps RouterDeps) {
	authH := NewAuthHandler(deps.Store, deps.Audits, deps.Logger)
	catalogH := NewCatalogHandler(deps.Store, deps.API, deps.Logger)
	cartH := NewCartHandler(deps.Store, deps.API, deps.Logger)
	adminH := NewAdminHandler(deps.Audits, deps.Logger)

	app.Use(ForcedRedirect(deps.Navigator))

	// ── Rutas públicas ───────────────────────────────────────
	app.Get("/session", authH.Session)
	app.Get("/unauthorized", authH.Unauthorized)
	app.Get("/products", catalogH.List)
	app.Get("/products/:id", catalogH.Detail)

	// ── Solo invitados ───────────────────────────────────────
	app.Post("/login", GuestOnly(deps.Store), authH.Login)

	// ── Rutas privadas ───────────────────────────────────────
	auth := RequireAuth(deps.Store)
	app.Post("/logout", auth, authH.Logout)
	app.Get("/cart", auth, cartH.View)
	app.Post("/cart/items", auth, cartH.Add)
	app.Put("/cart/items/:id", auth, cartH.UpdateQuantity)
	app.Delete("/cart/items/:id", auth, cartH.Remove)
	app.Post("/cart/clear", auth, cartH.Clear)

	// ── Administración ───────────────────────────────────────
	app.Get("/admin", RequireRole(deps.Store, entity.RoleAdmin), adminH.Dashboard)

	// la auditoría también es visible para moderadores
	auditGroup := app.Group("/admin/audit", RequireRole(deps.Store, entity.RoleAdmin, entity.RoleModerator))
	auditGroup.Get("/", adminH.AuditLogs)
	auditGroup.Get("/remote", adminH.AuditLogsRemote)
	auditGroup.Get("/export.csv", adminH.ExportCSV)
	auditGroup.Get("/export.pdf", adminH.ExportPDF)
}

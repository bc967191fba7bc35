package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-spa/internal/application/audit"
	"github.com/jhoicas/Tienda-spa/internal/application/dto"
	"github.com/jhoicas/Tienda-spa/internal/domain"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// AuthHandler expone la sesión de la shell: login, logout y estado.
type AuthHandler struct {
	st     *store.Store
	audits *audit.Service
	log    *logger.Logger
}

func NewAuthHandler(st *store.Store, audits *audit.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{st: st, audits: audits, log: log.Component("auth_handler")}
}

// Session devuelve el estado de sesión actual.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	snap := h.st.Snapshot()
	view := dto.SessionView{
		Authenticated: store.IsAuthenticated(snap.Auth),
		Email:         store.UserEmail(snap.Auth),
		Name:          store.UserName(snap.Auth),
		Role:          store.UserRole(snap.Auth),
		Error:         store.AuthError(snap.Auth),
	}
	return c.JSON(view)
}

// Login despacha LOGIN y espera a que la sesión se resuelva antes de
// responder. Un login ya en curso resuelve igualmente la espera.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo inválido"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: domain.ErrInvalidInput.Error() + ": email y password son requeridos"})
	}

	pending := h.st.Expect(func(ev store.Event, _ store.AppState) bool {
		switch ev.(type) {
		case store.LoginSucceeded, store.LoginFailed:
			return true
		}
		return false
	})
	h.st.Dispatch(store.LoginRequested{
		Credentials: entity.LoginCredentials{Email: req.Email, Password: req.Password},
	})

	ev, snap, err := pending.Await(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusGatewayTimeout).
			JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "el login no respondió a tiempo"})
	}
	if _, ok := ev.(store.LoginFailed); ok {
		return c.Status(fiber.StatusUnauthorized).
			JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: store.AuthError(snap.Auth)})
	}

	target := req.ReturnURL
	if target == "" {
		target = c.Query("returnUrl", "/")
	}
	return c.Redirect(target, fiber.StatusFound)
}

// Logout despacha LOGOUT, espera el cierre de sesión y vuelve a /login.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	pending := h.st.Expect(func(ev store.Event, _ store.AppState) bool {
		_, ok := ev.(store.LogoutSucceeded)
		return ok
	})
	h.st.Dispatch(store.LogoutRequested{})

	if _, _, err := pending.Await(c.UserContext()); err != nil {
		h.log.Warn().Err(err).Msg("logout no confirmado")
	}
	return c.Redirect("/login", fiber.StatusFound)
}

// Unauthorized página de acceso prohibido. Aterrizar aquí siempre deja
// rastro en la auditoría.
func (h *AuthHandler) Unauthorized(c *fiber.Ctx) error {
	h.audits.Log(audit.Entry{
		Action:   entity.AuditActionAccessDenied,
		Resource: c.Query("from", c.OriginalURL()),
		Status:   entity.AuditStatusFailure,
	})
	return c.Status(fiber.StatusForbidden).
		JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no tiene permisos para acceder a esta sección"})
}

package backend

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Tienda-spa/internal/application/dto"
	"github.com/jhoicas/Tienda-spa/internal/domain"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
	"github.com/jhoicas/Tienda-spa/pkg/token"
)

// Handler rutas de la API de desarrollo.
type Handler struct {
	data       *Dataset
	jwtSecret  string
	jwtIssuer  string
	expMinutes int
	log        *logger.Logger
}

func NewHandler(data *Dataset, jwtSecret, jwtIssuer string, expMinutes int, log *logger.Logger) *Handler {
	return &Handler{
		data:       data,
		jwtSecret:  jwtSecret,
		jwtIssuer:  jwtIssuer,
		expMinutes: expMinutes,
		log:        log.Component("backend"),
	}
}

// Login godoc
// @Summary Autentica con email y password
// @Tags auth
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var creds entity.LoginCredentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo inválido"})
	}

	user, err := h.data.Authenticate(creds.Email, creds.Password)
	if err != nil {
		h.log.Warn().Err(err).Str("email", creds.Email).Msg("credenciales inválidas")
		return c.Status(fiber.StatusUnauthorized).
			JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	}
	return h.issueSession(c, user)
}

// Refresh godoc
// @Summary Rota un refresh token y emite una nueva sesión
// @Tags auth
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "refreshToken es requerido"})
	}

	userID, ok := h.data.RotateRefresh(req.RefreshToken)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).
			JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "refresh token inválido o consumido"})
	}
	user, ok := h.data.UserByID(userID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).
			JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario desconocido"})
	}
	return h.issueSession(c, user)
}

// Logout godoc
// @Summary Revoca los refresh tokens del usuario autenticado
// @Tags auth
// @Router /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	if claims, err := h.claims(c); err == nil {
		h.data.RevokeUserRefresh(claims.Subject)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Products godoc
// @Summary Lista el catálogo de productos
// @Tags products
// @Router /products [get]
func (h *Handler) Products(c *fiber.Ctx) error {
	return c.JSON(h.data.Products(c.Query("category")))
}

// Product godoc
// @Summary Devuelve un producto por id
// @Tags products
// @Router /products/{id} [get]
func (h *Handler) Product(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	product, ok := h.data.ProductByID(int64(id))
	if !ok {
		return c.Status(fiber.StatusNotFound).
			JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.JSON(product)
}

// AppendAudit godoc
// @Summary Recibe una entrada de auditoría replicada por el cliente
// @Tags audit
// @Router /audit/logs [post]
func (h *Handler) AppendAudit(c *fiber.Ctx) error {
	var entry entity.AuditLog
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo inválido"})
	}
	entry.IPAddress = c.IP()
	h.data.AppendAudit(entry)
	return c.SendStatus(fiber.StatusCreated)
}

// ListAudit godoc
// @Summary Lista la auditoría consolidada (solo ADMIN o MODERATOR)
// @Tags audit
// @Router /audit/logs [get]
func (h *Handler) ListAudit(c *fiber.Ctx) error {
	claims, err := h.claims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).
			JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	}
	if claims.Role != entity.RoleAdmin && claims.Role != entity.RoleModerator {
		return c.Status(fiber.StatusForbidden).
			JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol insuficiente"})
	}
	return c.JSON(h.data.Audits())
}

func (h *Handler) issueSession(c *fiber.Ctx, user entity.User) error {
	jwt, err := token.Generate(h.jwtSecret, user.ID, user.Email, user.Role, h.jwtIssuer, h.expMinutes)
	if err != nil {
		h.log.Error().Err(err).Msg("fallo firmando token")
		return c.Status(fiber.StatusInternalServerError).
			JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo emitir la sesión"})
	}

	refresh := uuid.NewString()
	h.data.IssueRefresh(refresh, user.ID)

	return c.JSON(entity.AuthResponse{
		User:         user,
		Token:        jwt,
		RefreshToken: refresh,
		ExpiresIn:    int64(h.expMinutes) * 60,
	})
}

// claims extrae y valida el bearer token de la petición.
func (h *Handler) claims(c *fiber.Ctx) (*token.Claims, error) {
	raw := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(raw, "Bearer ") {
		return nil, domain.ErrUnauthorized
	}
	claims, err := token.Parse(h.jwtSecret, strings.TrimPrefix(raw, "Bearer "))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTokenInvalid, err)
	}
	return claims, nil
}

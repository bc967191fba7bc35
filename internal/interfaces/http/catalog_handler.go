package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-spa/internal/application/dto"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/apiclient"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// CatalogHandler sirve el catálogo de productos consultando el backend
// a través del cliente HTTP con sesión.
type CatalogHandler struct {
	st  *store.Store
	api *apiclient.Client
	log *logger.Logger
}

func NewCatalogHandler(st *store.Store, api *apiclient.Client, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{st: st, api: api, log: log.Component("catalog_handler")}
}

// List devuelve el catálogo completo, opcionalmente filtrado por categoría.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	var opts []apiclient.Option
	if cat := c.Query("category"); cat != "" {
		opts = append(opts, apiclient.WithQuery("category", cat))
	}

	var products []entity.Product
	if err := h.api.Get(c.UserContext(), "/products", &products, opts...); err != nil {
		return apiFailure(c, err, "no se pudo obtener el catálogo")
	}
	return c.JSON(products)
}

// Detail devuelve un producto junto con su presencia en el carrito.
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de producto inválido"})
	}

	var product entity.Product
	if err := h.api.Get(c.UserContext(), fmt.Sprintf("/products/%d", id), &product); err != nil {
		return apiFailure(c, err, "producto no encontrado")
	}

	snap := h.st.Snapshot()
	return c.JSON(fiber.Map{
		"product":  product,
		"inCart":   store.IsProductInCart(snap.Cart, product.ID),
		"quantity": store.ProductQuantity(snap.Cart, product.ID),
	})
}

// apiFailure traduce un error del cliente HTTP a la respuesta de la shell,
// preservando el status del backend cuando se conoce.
func apiFailure(c *fiber.Ctx, err error, fallback string) error {
	if apiErr, ok := err.(*apiclient.APIError); ok {
		return c.Status(apiErr.Status).
			JSON(dto.ErrorResponse{Code: "UPSTREAM", Message: apiErr.Message})
	}
	return c.Status(fiber.StatusBadGateway).
		JSON(dto.ErrorResponse{Code: "UPSTREAM", Message: fallback})
}

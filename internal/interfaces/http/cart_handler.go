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

// CartHandler traduce las operaciones del carrito a eventos del store y
// responde con el estado ya aplicado.
type CartHandler struct {
	st  *store.Store
	api *apiclient.Client
	log *logger.Logger
}

func NewCartHandler(st *store.Store, api *apiclient.Client, log *logger.Logger) *CartHandler {
	return &CartHandler{st: st, api: api, log: log.Component("cart_handler")}
}

// View devuelve el carrito con subtotales y total.
func (h *CartHandler) View(c *fiber.Ctx) error {
	snap := h.st.Snapshot()
	return c.JSON(h.view(snap))
}

// Add resuelve el producto contra el backend y despacha el alta.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req dto.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo inválido"})
	}
	if req.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "productId es requerido"})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product entity.Product
	if err := h.api.Get(c.UserContext(), fmt.Sprintf("/products/%d", req.ProductID), &product); err != nil {
		return apiFailure(c, err, "producto no encontrado")
	}

	snap, ok, err := h.apply(c, store.CartItemAdded{Product: product, Quantity: req.Quantity})
	if !ok {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.view(snap))
}

// UpdateQuantity fija la cantidad de una línea; cero la elimina.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de producto inválido"})
	}
	var req dto.UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo inválido"})
	}

	snap, ok, err := h.apply(c, store.CartQuantityUpdated{ProductID: int64(id), Quantity: req.Quantity})
	if !ok {
		return err
	}
	return c.JSON(h.view(snap))
}

// Remove elimina una línea del carrito.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de producto inválido"})
	}

	snap, ok, err := h.apply(c, store.CartItemRemoved{ProductID: int64(id)})
	if !ok {
		return err
	}
	return c.JSON(h.view(snap))
}

// Clear vacía el carrito por completo.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	snap, ok, err := h.apply(c, store.CartCleared{})
	if !ok {
		return err
	}
	return c.JSON(h.view(snap))
}

// apply despacha un evento y espera a que el coordinador lo procese. Si la
// espera falla, escribe la respuesta de error y devuelve ok=false.
func (h *CartHandler) apply(c *fiber.Ctx, ev store.CartEvent) (store.AppState, bool, error) {
	pending := h.st.Expect(func(got store.Event, _ store.AppState) bool {
		// solo los eventos de mutación son comparables; los de carga llevan slices
		switch got.(type) {
		case store.CartItemAdded, store.CartItemRemoved, store.CartQuantityUpdated, store.CartCleared:
			return got == store.Event(ev)
		}
		return false
	})
	h.st.Dispatch(ev)

	_, snap, err := pending.Await(c.UserContext())
	if err != nil {
		h.log.Warn().Err(err).Msg("evento de carrito no confirmado")
		return store.AppState{}, false, c.Status(fiber.StatusGatewayTimeout).
			JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación no se confirmó a tiempo"})
	}
	return snap, true, nil
}

func (h *CartHandler) view(snap store.AppState) dto.CartView {
	return dto.NewCartView(snap.Cart, store.ItemCount(snap.Cart), store.CartTotal(snap.Cart))
}

package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
)

// AddItemRequest alta de producto en el carrito.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

// UpdateQuantityRequest cambio de cantidad de una línea.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartLineView línea del carrito con su subtotal calculado.
type CartLineView struct {
	Product  entity.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView carrito completo para la shell.
type CartView struct {
	Items     []CartLineView  `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

// NewCartView proyecta el estado del carrito a su vista.
func NewCartView(cart entity.CartState, count int, total decimal.Decimal) CartView {
	view := CartView{Items: make([]CartLineView, 0, len(cart.Items)), ItemCount: count, Total: total}
	for _, it := range cart.Items {
		view.Items = append(view.Items, CartLineView{
			Product:  it.Product,
			Quantity: it.Quantity,
			Subtotal: it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return view
}

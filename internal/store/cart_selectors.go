package store

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
)

// Selectores del carrito: funciones puras sobre un snapshot, sin I/O oculto.

// ItemCount suma de cantidades de todas las líneas.
func ItemCount(s entity.CartState) int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// CartTotal suma de precio × cantidad de todas las líneas.
func CartTotal(s entity.CartState) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// IsProductInCart indica si existe una línea para el producto.
func IsProductInCart(s entity.CartState, productID int64) bool {
	for _, item := range s.Items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// ProductQuantity cantidad de la línea del producto, 0 si no existe.
func ProductQuantity(s entity.CartState, productID int64) int {
	for _, item := range s.Items {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo remoto. Para el cliente el
// catálogo es de solo lectura: una vez descargado, el producto no cambia.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
}

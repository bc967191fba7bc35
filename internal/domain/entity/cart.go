package entity

// CartItem una línea del carrito: producto + cantidad (siempre >= 1).
// Una mutación que dejaría la cantidad en <= 0 elimina la línea.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartState el carrito completo. Invariante: como máximo una línea por
// Product.ID, en orden de primera inserción. Este es también el formato del
// snapshot persistido (un documento JSON bajo una clave fija).
type CartState struct {
	Items []CartItem `json:"items"`
}

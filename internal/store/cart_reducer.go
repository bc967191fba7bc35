package store

import "github.com/jhoicas/Tienda-spa/internal/domain/entity"

// initialCartState carrito vacío.
func initialCartState() entity.CartState {
	return entity.CartState{Items: []entity.CartItem{}}
}

// reduceCart aplica una transición pura sobre el carrito. Las actualizaciones
// son copy-on-write: nunca se muta el slice del estado anterior, así los
// snapshots entregados a los efectos son seguros sin copias adicionales.
func reduceCart(s entity.CartState, ev CartEvent) entity.CartState {
	switch ev := ev.(type) {
	case CartItemAdded:
		for i, item := range s.Items {
			if item.Product.ID == ev.Product.ID {
				items := make([]entity.CartItem, len(s.Items))
				copy(items, s.Items)
				items[i].Quantity += ev.Quantity
				return entity.CartState{Items: items}
			}
		}
		items := make([]entity.CartItem, len(s.Items), len(s.Items)+1)
		copy(items, s.Items)
		items = append(items, entity.CartItem{Product: ev.Product, Quantity: ev.Quantity})
		return entity.CartState{Items: items}

	case CartItemRemoved:
		return entity.CartState{Items: withoutProduct(s.Items, ev.ProductID)}

	case CartQuantityUpdated:
		if ev.Quantity <= 0 {
			return entity.CartState{Items: withoutProduct(s.Items, ev.ProductID)}
		}
		items := make([]entity.CartItem, len(s.Items))
		copy(items, s.Items)
		for i := range items {
			if items[i].Product.ID == ev.ProductID {
				items[i].Quantity = ev.Quantity
			}
		}
		return entity.CartState{Items: items}

	case CartCleared:
		return initialCartState()

	case CartLoadSucceeded:
		// Reemplazo completo con el snapshot hidratado, tal cual viene.
		cart := ev.Cart
		if cart.Items == nil {
			cart.Items = []entity.CartItem{}
		}
		return cart

	case CartLoadRequested:
		// Solo dispara el efecto de hidratación; el estado no cambia.
		return s

	default:
		return s
	}
}

// withoutProduct devuelve una copia de items sin las líneas del producto dado.
func withoutProduct(items []entity.CartItem, productID int64) []entity.CartItem {
	out := make([]entity.CartItem, 0, len(items))
	for _, item := range items {
		if item.Product.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

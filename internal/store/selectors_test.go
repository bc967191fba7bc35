package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Selectores del carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestItemCount_SumaCantidadesNoLineas(t *testing.T) {
	s := carritoCon(
		entity.CartItem{Product: producto(1, "10.00"), Quantity: 2},
		entity.CartItem{Product: producto(2, "5.00"), Quantity: 3},
	)

	assert.Equal(t, 5, ItemCount(s), "2 + 3 unidades, no 2 líneas")
}

func TestCartTotal_SumaPrecioPorCantidad(t *testing.T) {
	s := carritoCon(
		entity.CartItem{Product: producto(1, "10.00"), Quantity: 2},
		entity.CartItem{Product: producto(2, "5.00"), Quantity: 3},
	)

	assert.True(t, CartTotal(s).Equal(decimal.RequireFromString("35.00")),
		"total esperado 35.00, obtenido %s", CartTotal(s))
}

func TestCartTotal_CarritoVacioEsCero(t *testing.T) {
	assert.True(t, CartTotal(initialCartState()).IsZero())
}

func TestIsProductInCart(t *testing.T) {
	s := carritoCon(entity.CartItem{Product: producto(1, "10.00"), Quantity: 2})

	assert.True(t, IsProductInCart(s, 1))
	assert.False(t, IsProductInCart(s, 99))
}

func TestProductQuantity_AusenteEsCero(t *testing.T) {
	s := carritoCon(entity.CartItem{Product: producto(1, "10.00"), Quantity: 2})

	assert.Equal(t, 2, ProductQuantity(s, 1))
	assert.Equal(t, 0, ProductQuantity(s, 99))
}

// ──────────────────────────────────────────────────────────────────────────────
// Selectores de auth
// ──────────────────────────────────────────────────────────────────────────────

func TestUserRole_SinUsuarioEsVacio(t *testing.T) {
	assert.Empty(t, UserRole(initialAuthState()))
}

func TestIsAdmin_SoloConRolAdmin(t *testing.T) {
	admin := sesionActiva()
	assert.True(t, IsAdmin(admin))

	usuario := sesionActiva()
	usuario.User.Role = entity.RoleUser
	assert.False(t, IsAdmin(usuario))
}

func TestIsModerator_AdminTambienModera(t *testing.T) {
	s := sesionActiva()
	s.User.Role = entity.RoleModerator
	assert.True(t, IsModerator(s))

	s.User.Role = entity.RoleAdmin
	assert.True(t, IsModerator(s), "el rol ADMIN incluye las capacidades de MODERATOR")

	s.User.Role = entity.RoleUser
	assert.False(t, IsModerator(s))
}

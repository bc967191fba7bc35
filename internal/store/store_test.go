package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// arrancarStore levanta el run loop y lo detiene al terminar el test.
func arrancarStore(t *testing.T, listeners ...Listener) *Store {
	t.Helper()
	s := New(logger.Nop())
	for _, l := range listeners {
		s.RegisterListener(l)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s
}

func TestStore_AplicaEventosEnOrdenDeDespacho(t *testing.T) {
	s := arrancarStore(t)

	pending := s.Expect(func(ev Event, _ AppState) bool {
		upd, ok := ev.(CartQuantityUpdated)
		return ok && upd.Quantity == 9
	})

	s.Dispatch(CartItemAdded{Product: producto(1, "10.00"), Quantity: 2})
	s.Dispatch(CartItemAdded{Product: producto(1, "10.00"), Quantity: 3})
	s.Dispatch(CartQuantityUpdated{ProductID: 1, Quantity: 9})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, snap, err := pending.Await(ctx)
	require.NoError(t, err)

	// si las transiciones se intercalaran, la cantidad final no sería 9
	assert.Equal(t, 9, ProductQuantity(snap.Cart, 1))
	assert.Len(t, snap.Cart.Items, 1)
}

func TestStore_SnapshotReflejaLaUltimaTransicion(t *testing.T) {
	s := arrancarStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	pending := s.Expect(func(ev Event, _ AppState) bool {
		_, ok := ev.(CartItemAdded)
		return ok
	})
	s.Dispatch(CartItemAdded{Product: producto(7, "1.50"), Quantity: 4})
	_, _, err := pending.Await(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, ProductQuantity(s.Snapshot().Cart, 7))
}

func TestStore_ListenerRecibeElSnapshotPosterior(t *testing.T) {
	observado := make(chan AppState, 1)
	s := arrancarStore(t, func(ev Event, snap AppState) {
		if _, ok := ev.(CartItemAdded); ok {
			observado <- snap
		}
	})

	s.Dispatch(CartItemAdded{Product: producto(1, "10.00"), Quantity: 2})

	select {
	case snap := <-observado:
		assert.Equal(t, 2, ProductQuantity(snap.Cart, 1),
			"el listener debe ver el estado ya mutado por su evento")
	case <-time.After(time.Second):
		t.Fatal("el listener nunca fue notificado")
	}
}

func TestStore_ExpectAntesDeDispatchNoPierdeLaNotificacion(t *testing.T) {
	s := arrancarStore(t)

	pending := s.Expect(func(ev Event, _ AppState) bool {
		_, ok := ev.(CartCleared)
		return ok
	})
	s.Dispatch(CartCleared{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, _, err := pending.Await(ctx)
	require.NoError(t, err)
	assert.IsType(t, CartCleared{}, ev)
}

func TestStore_AwaitRespetaElContexto(t *testing.T) {
	s := arrancarStore(t)

	pending := s.Expect(func(Event, AppState) bool { return false })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := pending.Await(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_ListenerRegistradoTrasRunSeIgnora(t *testing.T) {
	s := arrancarStore(t)

	// darle al run loop ocasión de marcar running
	time.Sleep(10 * time.Millisecond)

	llamado := make(chan struct{}, 1)
	s.RegisterListener(func(Event, AppState) { llamado <- struct{}{} })

	pending := s.Expect(func(ev Event, _ AppState) bool {
		_, ok := ev.(CartCleared)
		return ok
	})
	s.Dispatch(CartCleared{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, err := pending.Await(ctx)
	require.NoError(t, err)

	select {
	case <-llamado:
		t.Fatal("un listener registrado después de Run no debe ejecutarse")
	default:
	}
}

func TestStore_EventoDeAuthNoTocaElCarrito(t *testing.T) {
	s := arrancarStore(t)

	addPending := s.Expect(func(ev Event, _ AppState) bool {
		_, ok := ev.(CartItemAdded)
		return ok
	})
	s.Dispatch(CartItemAdded{Product: producto(1, "10.00"), Quantity: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, err := addPending.Await(ctx)
	require.NoError(t, err)

	loginPending := s.Expect(func(ev Event, _ AppState) bool {
		_, ok := ev.(LoginSucceeded)
		return ok
	})
	s.Dispatch(LoginSucceeded{Response: entity.AuthResponse{
		User:  entity.User{ID: "u-1", Email: "ana@tienda.dev"},
		Token: "jwt",
	}})

	_, snap, err := loginPending.Await(ctx)
	require.NoError(t, err)

	assert.True(t, IsAuthenticated(snap.Auth))
	assert.Equal(t, 1, ItemCount(snap.Cart), "los contenedores son independientes")
}

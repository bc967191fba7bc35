// Package effects implementa la orquestación asíncrona alrededor del store:
// los listeners observan transiciones ya aplicadas, hacen I/O (red,
// almacenamiento) en sus propios goroutines y despachan eventos de
// seguimiento. Los reducers nunca hacen I/O.
package effects

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/storage"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// cartStorageKey clave del snapshot del carrito en el almacenamiento durable.
const cartStorageKey = "app-cart"

// CartEffects persiste el carrito tras cada mutación y lo hidrata al arrancar.
type CartEffects struct {
	st  *store.Store
	kv  storage.Store
	log *logger.Logger
}

// NewCartEffects construye los efectos del carrito.
func NewCartEffects(st *store.Store, kv storage.Store, log *logger.Logger) *CartEffects {
	return &CartEffects{st: st, kv: kv, log: log.Component("cart-effects")}
}

// Register registra el listener en el store. Llamar antes de Run.
func (e *CartEffects) Register() {
	e.st.RegisterListener(e.handle)
}

// handle corre en el run loop: clasifica y delega a goroutines propios.
func (e *CartEffects) handle(ev store.Event, snap store.AppState) {
	switch ev.(type) {
	case store.CartLoadRequested:
		go e.hydrate()
	case store.CartItemAdded, store.CartItemRemoved, store.CartQuantityUpdated, store.CartCleared:
		// El snapshot ya refleja la mutación: se persiste completo,
		// fire-and-forget. Escrituras rápidas sucesivas son redundantes pero
		// la última siempre gana.
		go e.persist(snap.Cart)
	}
}

// hydrate lee el snapshot persistido y despacha la carga. Ausencia o
// corrupción degradan a carrito vacío; nada se propaga más allá de este borde.
func (e *CartEffects) hydrate() {
	empty := entity.CartState{Items: []entity.CartItem{}}

	raw, err := e.kv.Get(context.Background(), cartStorageKey)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			e.log.Warn().Err(err).Msg("leer snapshot del carrito")
		}
		e.st.Dispatch(store.CartLoadSucceeded{Cart: empty})
		return
	}

	var cart entity.CartState
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		e.log.Warn().Err(err).Msg("snapshot del carrito corrupto: se descarta")
		e.st.Dispatch(store.CartLoadSucceeded{Cart: empty})
		return
	}
	e.st.Dispatch(store.CartLoadSucceeded{Cart: cart})
}

// persist escribe el snapshot completo; el fallo solo se loguea.
func (e *CartEffects) persist(cart entity.CartState) {
	raw, err := json.Marshal(cart)
	if err != nil {
		e.log.Error().Err(err).Msg("serializar carrito")
		return
	}
	if err := e.kv.Set(context.Background(), cartStorageKey, string(raw)); err != nil {
		e.log.Warn().Err(err).Msg("persistir carrito")
	}
}

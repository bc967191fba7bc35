package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// AppState el estado completo de la aplicación. Cada contenedor es propiedad
// exclusiva de su reducer; efectos y UI solo lo leen vía Snapshot y lo mutan
// despachando eventos.
type AppState struct {
	Auth entity.AuthState
	Cart entity.CartState
}

// Listener recibe cada evento ya aplicado junto con el snapshot posterior a
// la transición. Se invoca desde el run loop: debe retornar rápido y lanzar
// sus propios goroutines para cualquier I/O.
type Listener func(ev Event, snap AppState)

// waiter espera puntual por un evento que cumpla el predicado.
type waiter struct {
	pred func(ev Event, snap AppState) bool
	ch   chan matched
}

// matched evento aplicado + snapshot posterior entregados a un waiter.
type matched struct {
	ev   Event
	snap AppState
}

// Store coordinador del estado: serializa todas las transiciones en un único
// goroutine (Run), de modo que dos aplicaciones de reducer nunca se
// intercalan y los efectos siempre observan el estado posterior a su evento.
type Store struct {
	log *logger.Logger

	events   chan Event
	snapshot atomic.Pointer[AppState]

	mu        sync.Mutex
	listeners []Listener
	waiters   []*waiter
	running   bool

	done chan struct{}
}

// New construye el store con el estado inicial (sin sesión, carrito vacío).
func New(log *logger.Logger) *Store {
	s := &Store{
		log:    log,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	initial := AppState{
		Auth: initialAuthState(),
		Cart: initialCartState(),
	}
	s.snapshot.Store(&initial)
	return s
}

// RegisterListener registra un efecto. Debe llamarse antes de Run; después
// del arranque el registro se ignora para no introducir carreras.
func (s *Store) RegisterListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.log.Warn().Msg("listener registrado después de Run: ignorado")
		return
	}
	s.listeners = append(s.listeners, l)
}

// Run consume eventos hasta que el contexto termina. Es el único goroutine
// que aplica reducers y notifica listeners.
func (s *Store) Run(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	listeners := s.listeners
	s.mu.Unlock()

	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.apply(ev, listeners)
		}
	}
}

// Dispatch encola un evento para el run loop. Los eventos se aplican en el
// orden en que se despachan; si el store ya terminó, el evento se descarta.
func (s *Store) Dispatch(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
		s.log.Warn().Str("evento", eventName(ev)).Msg("store detenido: evento descartado")
	}
}

// Snapshot devuelve el estado actual. Lectura pull-based, segura desde
// cualquier goroutine; el valor es una copia inmutable por convención
// (los reducers son copy-on-write).
func (s *Store) Snapshot() AppState {
	return *s.snapshot.Load()
}

// PendingEvent espera registrada por Expect; se consume una sola vez.
type PendingEvent struct {
	s *Store
	w *waiter
}

// Expect registra una espera por el próximo evento que cumpla el predicado.
// Registrar ANTES de despachar el evento que inicia el trabajo esperado
// garantiza no perder la notificación aunque el efecto complete rapidísimo.
func (s *Store) Expect(pred func(ev Event, snap AppState) bool) *PendingEvent {
	w := &waiter{pred: pred, ch: make(chan matched, 1)}
	s.mu.Lock()
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()
	return &PendingEvent{s: s, w: w}
}

// Await bloquea hasta el evento esperado y devuelve el evento aplicado con el
// snapshot posterior a su transición.
func (p *PendingEvent) Await(ctx context.Context) (Event, AppState, error) {
	select {
	case m := <-p.w.ch:
		return m.ev, m.snap, nil
	case <-ctx.Done():
		p.s.removeWaiter(p.w)
		return nil, p.s.Snapshot(), ctx.Err()
	case <-p.s.done:
		p.s.removeWaiter(p.w)
		return nil, p.s.Snapshot(), context.Canceled
	}
}

// WaitForEvent atajo Expect+Await para cuando no hay carrera entre registrar
// y despachar (p. ej. esperar un evento que otro componente emitirá).
func (s *Store) WaitForEvent(ctx context.Context, pred func(ev Event, snap AppState) bool) (Event, AppState, error) {
	return s.Expect(pred).Await(ctx)
}

// apply ejecuta la transición, publica el snapshot y notifica listeners y
// waiters. Solo se llama desde el run loop.
func (s *Store) apply(ev Event, listeners []Listener) {
	cur := s.snapshot.Load()
	next := *cur

	switch ev := ev.(type) {
	case AuthEvent:
		next.Auth = reduceAuth(cur.Auth, ev)
	case CartEvent:
		next.Cart = reduceCart(cur.Cart, ev)
	default:
		// Unión cerrada: aquí solo se llega si alguien agrega un evento sin
		// clasificarlo en una de las dos uniones.
		s.log.Warn().Str("evento", eventName(ev)).Msg("evento sin reducer: ignorado")
	}

	s.snapshot.Store(&next)

	s.log.Trace().Str("evento", eventName(ev)).Msg("transición aplicada")

	for _, l := range listeners {
		l(ev, next)
	}
	s.notifyWaiters(ev, next)
}

func (s *Store) notifyWaiters(ev Event, snap AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.waiters[:0]
	for _, w := range s.waiters {
		if w.pred(ev, snap) {
			w.ch <- matched{ev: ev, snap: snap}
		} else {
			remaining = append(remaining, w)
		}
	}
	s.waiters = remaining
}

func (s *Store) removeWaiter(target *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.waiters {
		if w == target {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/phenrril/stylevision/internal/cart"
	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/overlay"
)

type room struct {
	m        *overlay.Manipulator
	lastSeen time.Time
}

type cartEntry struct {
	s        *cart.Store
	lastSeen time.Time
}

// Registry mantiene el estado vivo: un carrito por namespace y un probador por sesión.
type Registry struct {
	mu    sync.Mutex
	kv    domain.KVStore
	carts map[string]*cartEntry
	rooms map[string]*room
	opts  []overlay.Option
	now   func() time.Time
}

func NewRegistry(kv domain.KVStore, opts ...overlay.Option) *Registry {
	return &Registry{
		kv:    kv,
		carts: map[string]*cartEntry{},
		rooms: map[string]*room{},
		opts:  opts,
		now:   time.Now,
	}
}

func (r *Registry) cachedCart(namespace string) *cart.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.carts[namespace]; ok {
		e.lastSeen = r.now()
		return e.s
	}
	return nil
}

// Cart abre el carrito del namespace la primera vez y lo reutiliza después.
// La lectura del almacenamiento se hace sin el lock; si dos requests abren a la vez gana el primero.
func (r *Registry) Cart(ctx context.Context, namespace string) (*cart.Store, error) {
	if s := r.cachedCart(namespace); s != nil {
		return s, nil
	}
	s, err := cart.Open(ctx, r.kv, namespace)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.carts[namespace]; ok {
		e.lastSeen = r.now()
		return e.s, nil
	}
	r.carts[namespace] = &cartEntry{s: s, lastSeen: r.now()}
	return s, nil
}

func (r *Registry) Room(sessionID string) *overlay.Manipulator {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[sessionID]
	if !ok {
		rm = &room{m: overlay.New(r.opts...)}
		r.rooms[sessionID] = rm
	}
	rm.lastSeen = r.now()
	return rm.m
}

func (r *Registry) DropRoom(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, sessionID)
}

// Sweep descarta probadores y carritos sin actividad desde before.
// Los carritos se vuelven a leer del almacenamiento en el próximo acceso.
func (r *Registry) Sweep(before time.Time) (rooms, carts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rm := range r.rooms {
		if rm.lastSeen.Before(before) {
			delete(r.rooms, id)
			rooms++
		}
	}
	for ns, e := range r.carts {
		if e.lastSeen.Before(before) {
			delete(r.carts, ns)
			carts++
		}
	}
	return rooms, carts
}

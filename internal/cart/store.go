// Package cart guarda las líneas del carrito de un visitante con escritura
// inmediata al almacenamiento durable.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/stylevision/internal/domain"
)

// StorageKey es la clave histórica del carrito en el almacenamiento del navegador.
const StorageKey = "styleVisionCart"

type Store struct {
	mu    sync.Mutex
	kv    domain.KVStore
	ns    string
	lines []domain.CartLine
}

// Open lee el carrito guardado una sola vez. Un valor corrupto se descarta y se arranca vacío.
func Open(ctx context.Context, kv domain.KVStore, namespace string) (*Store, error) {
	s := &Store{kv: kv, ns: namespace}
	raw, err := kv.Get(ctx, namespace, StorageKey)
	if errors.Is(err, domain.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer carrito: %w", err)
	}
	lines, err := Decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("namespace", namespace).Msg("carrito guardado inválido, se ignora")
		return s, nil
	}
	s.lines = lines
	return s, nil
}

// Decode valida la forma además del JSON: sin ids vacíos, cantidades >= 1 y claves únicas.
func Decode(raw string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	seen := make(map[domain.CartKey]struct{}, len(lines))
	for i, l := range lines {
		if l.ItemID == "" {
			return nil, fmt.Errorf("línea %d sin id", i)
		}
		if l.Quantity < 1 {
			return nil, fmt.Errorf("línea %d: %w", i, domain.ErrInvalidQuantity)
		}
		if _, dup := seen[l.Key()]; dup {
			return nil, fmt.Errorf("línea %d duplicada", i)
		}
		seen[l.Key()] = struct{}{}
	}
	return lines, nil
}

func Encode(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) Namespace() string { return s.ns }

// Lines devuelve una copia en orden de inserción.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

func (s *Store) indexOf(k domain.CartKey) int {
	for i, l := range s.lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := Encode(s.lines)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.ns, StorageKey, raw); err != nil {
		return fmt.Errorf("guardar carrito: %w", err)
	}
	return nil
}

// Add suma uno a la línea existente o crea una nueva con cantidad 1.
func (s *Store) Add(ctx context.Context, g domain.Garment, size, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := domain.CartKey{ItemID: g.ID, Size: size, Color: color}
	if i := s.indexOf(k); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{
			ItemID:   g.ID,
			Name:     g.Name,
			Image:    g.Image,
			Category: g.Category,
			Price:    g.Price,
			Quantity: 1,
			Size:     size,
			Color:    color,
		})
	}
	log.Debug().Str("item", g.ID).Str("namespace", s.ns).Msg("item agregado al carrito")
	return s.persist(ctx)
}

func (s *Store) Remove(ctx context.Context, k domain.CartKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, k)
}

func (s *Store) removeLocked(ctx context.Context, k domain.CartKey) error {
	if i := s.indexOf(k); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	return s.persist(ctx)
}

// SetQuantity con qty <= 0 equivale a Remove.
func (s *Store) SetQuantity(ctx context.Context, k domain.CartKey, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		return s.removeLocked(ctx, k)
	}
	if i := s.indexOf(k); i >= 0 {
		s.lines[i].Quantity = qty
	}
	return s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return s.persist(ctx)
}

func (s *Store) Contains(k domain.CartKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(k) >= 0
}

// Summary calcula los totales sobre el estado actual.
func (s *Store) Summary() Summary {
	return Summarize(s.Lines())
}

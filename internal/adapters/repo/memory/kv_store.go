// Package memory tiene implementaciones en memoria de los repositorios, para
// desarrollo local y tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/phenrril/stylevision/internal/domain"
)

type entry struct {
	value     string
	updatedAt time.Time
}

// KVStore es seguro para uso concurrente.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]map[string]entry
	now  func() time.Time
}

func NewKVStore() *KVStore {
	return &KVStore{data: map[string]map[string]entry{}, now: time.Now}
}

func (s *KVStore) Get(_ context.Context, namespace, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[namespace][key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

func (s *KVStore) Set(_ context.Context, namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = map[string]entry{}
		s.data[namespace] = ns
	}
	ns[key] = entry{value: value, updatedAt: s.now()}
	return nil
}

func (s *KVStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.data[namespace]; ok {
		delete(ns, key)
		if len(ns) == 0 {
			delete(s.data, namespace)
		}
	}
	return nil
}

func (s *KVStore) PurgeExpired(_ context.Context, prefix string, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for name, ns := range s.data {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for k, e := range ns {
			if e.updatedAt.Before(before) {
				delete(ns, k)
				n++
			}
		}
		if len(ns) == 0 {
			delete(s.data, name)
		}
	}
	return n, nil
}

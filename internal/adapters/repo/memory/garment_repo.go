package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/phenrril/stylevision/internal/domain"
)

type GarmentRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Garment
	order []string
}

func NewGarmentRepo(seed ...domain.Garment) *GarmentRepo {
	r := &GarmentRepo{items: map[string]domain.Garment{}}
	for i := range seed {
		_ = r.Save(context.Background(), &seed[i])
	}
	return r
}

func (r *GarmentRepo) List(_ context.Context, f domain.GarmentFilter) ([]domain.Garment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := []domain.Garment{}
	for _, id := range r.order {
		g := r.items[id]
		if !g.Active {
			continue
		}
		if f.Category != "" && g.Category != f.Category {
			continue
		}
		list = append(list, g)
	}
	return list, nil
}

func (r *GarmentRepo) FindByID(_ context.Context, id string) (*domain.Garment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[id]
	if !ok || !g.Active {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (r *GarmentRepo) Save(_ context.Context, g *domain.Garment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[g.ID]; !ok {
		r.order = append(r.order, g.ID)
	}
	r.items[g.ID] = *g
	return nil
}

func (r *GarmentRepo) DistinctCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	cats := []string{}
	for _, g := range r.items {
		if g.Category == "" || !g.Active {
			continue
		}
		if _, ok := seen[g.Category]; ok {
			continue
		}
		seen[g.Category] = struct{}{}
		cats = append(cats, g.Category)
	}
	sort.Strings(cats)
	return cats, nil
}

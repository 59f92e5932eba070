package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/stylevision/internal/domain"
)

type CustomerRepo struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Customer
	now     func() time.Time
}

func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{byEmail: map[string]domain.Customer{}, now: time.Now}
}

func (r *CustomerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *CustomerRepo) UpsertByEmail(_ context.Context, c *domain.Customer) error {
	email := domain.NormalizeEmail(c.Email)
	if email == "" {
		return errors.New("email vacío")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	stored, ok := r.byEmail[email]
	if !ok {
		stored = domain.Customer{ID: c.ID, Email: email, CreatedAt: now}
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
	}
	stored.Name = c.Name
	stored.LastLoginAt = now
	r.byEmail[email] = stored
	*c = stored
	return nil
}

package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer es quien entró con Google; el email es la identidad.
type Customer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"size:140;uniqueIndex"`
	Name        string    `gorm:"size:140"`
	LastLoginAt time.Time
	CreatedAt   time.Time
}

type CustomerRepo interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	// UpsertByEmail crea el cliente o actualiza nombre y último login. Deja en c lo guardado.
	UpsertByEmail(ctx context.Context, c *Customer) error
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

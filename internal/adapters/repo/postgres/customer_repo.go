package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/stylevision/internal/domain"
)

type CustomerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) *CustomerRepo { return &CustomerRepo{db: db} }

var errEmptyEmail = errors.New("email vacío")

func (r *CustomerRepo) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	e := domain.NormalizeEmail(email)
	if e == "" {
		return nil, errEmptyEmail
	}
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "email = ?", e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// UpsertByEmail resuelve el alta concurrente en la base con ON CONFLICT (email).
func (r *CustomerRepo) UpsertByEmail(ctx context.Context, c *domain.Customer) error {
	c.Email = domain.NormalizeEmail(c.Email)
	if c.Email == "" {
		return errEmptyEmail
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.LastLoginAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "last_login_at"}),
	}).Create(c).Error
	if err != nil {
		return err
	}
	// en conflicto el id generado no es el guardado
	return r.db.WithContext(ctx).First(c, "email = ?", c.Email).Error
}

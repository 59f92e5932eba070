package domain

import (
	"context"
	"time"
)

// Garment es una prenda del catálogo que se puede probar y comprar.
type Garment struct {
	ID        string    `gorm:"primaryKey;size:80" json:"id"`
	Name      string    `gorm:"size:180;not null" json:"name"`
	Image     string    `gorm:"size:255" json:"image"`
	Category  string    `gorm:"size:100;index" json:"category"`
	Price     float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Active    bool      `gorm:"default:true;index" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type GarmentFilter struct {
	Category string
}

type GarmentRepo interface {
	List(ctx context.Context, f GarmentFilter) ([]Garment, error)
	FindByID(ctx context.Context, id string) (*Garment, error)
	Save(ctx context.Context, g *Garment) error
	DistinctCategories(ctx context.Context) ([]string, error)
}

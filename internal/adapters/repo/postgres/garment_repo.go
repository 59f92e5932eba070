package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/stylevision/internal/domain"
)

type GarmentRepo struct{ db *gorm.DB }

func NewGarmentRepo(db *gorm.DB) *GarmentRepo { return &GarmentRepo{db: db} }

func (r *GarmentRepo) List(ctx context.Context, f domain.GarmentFilter) ([]domain.Garment, error) {
	var list []domain.Garment
	q := r.db.WithContext(ctx).Model(&domain.Garment{}).Where("active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if err := q.Order("created_at asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GarmentRepo) FindByID(ctx context.Context, id string) (*domain.Garment, error) {
	var g domain.Garment
	if err := r.db.WithContext(ctx).First(&g, "id = ? AND active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Save hace upsert por id.
func (r *GarmentRepo) Save(ctx context.Context, g *domain.Garment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "image", "category", "price", "active", "updated_at"}),
	}).Create(g).Error
}

func (r *GarmentRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	cats := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Garment{}).
		Distinct("category").Where("category <> '' AND active = ?", true).Order("category asc").Pluck("category", &cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GarmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Garment{}).Count(&n).Error
	return n, err
}

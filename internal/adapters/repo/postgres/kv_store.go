package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/stylevision/internal/domain"
)

// KVStore guarda el almacenamiento del navegador en la tabla kv_entries.
type KVStore struct{ db *gorm.DB }

func NewKVStore(db *gorm.DB) *KVStore { return &KVStore{db: db} }

func (s *KVStore) Get(ctx context.Context, namespace, key string) (string, error) {
	var e domain.KVEntry
	if err := s.db.WithContext(ctx).First(&e, "namespace = ? AND key = ?", namespace, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return e.Value, nil
}

func (s *KVStore) Set(ctx context.Context, namespace, key, value string) error {
	e := domain.KVEntry{Namespace: namespace, Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *KVStore) Delete(ctx context.Context, namespace, key string) error {
	return s.db.WithContext(ctx).Where("namespace = ? AND key = ?", namespace, key).Delete(&domain.KVEntry{}).Error
}

func (s *KVStore) PurgeExpired(ctx context.Context, prefix string, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("namespace LIKE ? AND updated_at < ?", prefix+"%", before).Delete(&domain.KVEntry{})
	return res.RowsAffected, res.Error
}

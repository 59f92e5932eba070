package domain

import (
	"context"
	"time"
)

const (
	LocalPrefix   = "local:"
	SessionPrefix = "session:"
)

// LocalNamespace persiste entre sesiones hasta que se borra explícitamente.
func LocalNamespace(owner string) string { return LocalPrefix + owner }

// SessionNamespace vive lo que dura la sesión de navegación.
func SessionNamespace(sessionID string) string { return SessionPrefix + sessionID }

// KVStore es el almacenamiento durable clave/valor. Get devuelve ErrNotFound si no existe.
type KVStore interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
}

// KVPurger lo implementan los stores que pueden vencer entradas viejas.
type KVPurger interface {
	PurgeExpired(ctx context.Context, prefix string, before time.Time) (int64, error)
}

type KVEntry struct {
	Namespace string    `gorm:"primaryKey;size:200"`
	Key       string    `gorm:"primaryKey;size:120"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"index"`
}

func (KVEntry) TableName() string { return "kv_entries" }

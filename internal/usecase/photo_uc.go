package usecase

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/phenrril/stylevision/internal/domain"
)

// PhotoKey es la clave de la foto en el namespace de la sesión.
const PhotoKey = "userImage"

type PhotoUC struct {
	KV       domain.KVStore
	MaxBytes int64
}

// Upload valida que sea imagen y la guarda como data URL. Si falla no cambia nada.
func (uc *PhotoUC) Upload(ctx context.Context, sessionNS string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrNotImage
	}
	if uc.MaxBytes > 0 && int64(len(data)) > uc.MaxBytes {
		return "", domain.ErrTooLarge
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "", domain.ErrNotImage
	}
	url := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := uc.KV.Set(ctx, sessionNS, PhotoKey, url); err != nil {
		return "", err
	}
	return url, nil
}

func (uc *PhotoUC) Get(ctx context.Context, sessionNS string) (string, error) {
	return uc.KV.Get(ctx, sessionNS, PhotoKey)
}

func (uc *PhotoUC) Remove(ctx context.Context, sessionNS string) error {
	return uc.KV.Delete(ctx, sessionNS, PhotoKey)
}

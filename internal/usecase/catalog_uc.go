package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/handoff"
)

type CatalogUC struct {
	Garments domain.GarmentRepo
	Handoff  *handoff.Composer
}

func (uc *CatalogUC) List(ctx context.Context, f domain.GarmentFilter) ([]domain.Garment, error) {
	return uc.Garments.List(ctx, f)
}

func (uc *CatalogUC) Get(ctx context.Context, id string) (*domain.Garment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("id vacío")
	}
	return uc.Garments.FindByID(ctx, id)
}

func (uc *CatalogUC) Categories(ctx context.Context) ([]string, error) {
	return uc.Garments.DistinctCategories(ctx)
}

// BuyLink arma el link de compra directa de una prenda.
func (uc *CatalogUC) BuyLink(ctx context.Context, id string) (string, error) {
	g, err := uc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return uc.Handoff.Link(handoff.ItemMessage(*g)), nil
}

// Import guarda cada prenda; devuelve cuántas se guardaron.
func (uc *CatalogUC) Import(ctx context.Context, list []domain.Garment) (int, error) {
	n := 0
	for i := range list {
		list[i].Active = true
		if err := uc.Garments.Save(ctx, &list[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// DefaultGarments es el catálogo inicial de la tienda.
func DefaultGarments() []domain.Garment {
	return []domain.Garment{
		{ID: "camiseta-azul", Name: "Camiseta Azul", Image: "images/clothing/camiseta-azul.png", Category: "camisetas", Price: 49.90, Active: true},
		{ID: "calca-jeans", Name: "Calça Jeans", Image: "images/clothing/calca-jeans-masculina.png", Category: "calças", Price: 129.90, Active: true},
		{ID: "vestido-vermelho", Name: "Vestido Vermelho", Image: "images/clothing/vestido.png", Category: "vestidos", Price: 189.90, Active: true},
		{ID: "saia-elegante", Name: "Saia Elegante", Image: "images/clothing/saia.png", Category: "saias", Price: 79.90, Active: true},
		{ID: "chapeu-unissex", Name: "Chapéu Unissex", Image: "images/clothing/chapeu.png", Category: "acessórios", Price: 39.90, Active: true},
		{ID: "shorts-feminino", Name: "Shorts Feminino", Image: "images/clothing/shorts-feminina.png", Category: "shorts", Price: 59.90, Active: true},
		{ID: "camiseta-feminina", Name: "Camiseta Feminina", Image: "images/clothing/camiseta-feminina.png", Category: "camisetas", Price: 54.90, Active: true},
	}
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phenrril/stylevision/internal/cart"
	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/handoff"
	"github.com/phenrril/stylevision/internal/overlay"
)

const OutfitKey = "savedOutfit"

type FittingUC struct {
	Registry *Registry
	Garments domain.GarmentRepo
	Photos   *PhotoUC
	KV       domain.KVStore
	Handoff  *handoff.Composer
}

type OutfitItem struct {
	domain.Garment
	Placement domain.Placement `json:"style"`
}

type Outfit struct {
	UserImage string       `json:"userImage"`
	Clothes   []OutfitItem `json:"clothes"`
}

func (uc *FittingUC) Room(sessionID string) *overlay.Manipulator {
	return uc.Registry.Room(sessionID)
}

// SetSelection valida contra el catálogo antes de tocar el probador.
func (uc *FittingUC) SetSelection(ctx context.Context, sessionID string, ids []string) (overlay.State, error) {
	for _, id := range ids {
		if _, err := uc.Garments.FindByID(ctx, id); err != nil {
			return overlay.State{}, fmt.Errorf("prenda %q: %w", id, err)
		}
	}
	m := uc.Room(sessionID)
	m.SetSelection(ids)
	return m.Snapshot(), nil
}

// Select enfoca una prenda del catálogo. Si no está en el probador sólo cambia el foco.
func (uc *FittingUC) Select(ctx context.Context, sessionID, id string) (overlay.State, error) {
	if _, err := uc.Garments.FindByID(ctx, id); err != nil {
		return overlay.State{}, fmt.Errorf("prenda %q: %w", id, err)
	}
	m := uc.Room(sessionID)
	m.Select(id)
	return m.Snapshot(), nil
}

// Selected devuelve las prendas del probador en el orden en que se eligieron.
func (uc *FittingUC) Selected(ctx context.Context, sessionID string) ([]domain.Garment, error) {
	ids := uc.Room(sessionID).IDs()
	out := make([]domain.Garment, 0, len(ids))
	for _, id := range ids {
		g, err := uc.Garments.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

func (uc *FittingUC) Checkout(ctx context.Context, sessionID string) (string, error) {
	list, err := uc.Selected(ctx, sessionID)
	if err != nil {
		return "", err
	}
	msg, err := handoff.SelectionMessage(list)
	if err != nil {
		return "", err
	}
	return uc.Handoff.Link(msg), nil
}

// SaveOutfit guarda foto y ubicaciones en el namespace persistente del visitante.
func (uc *FittingUC) SaveOutfit(ctx context.Context, sessionID, localNS string) (Outfit, error) {
	photo, err := uc.Photos.Get(ctx, domain.SessionNamespace(sessionID))
	if errors.Is(err, domain.ErrNotFound) {
		return Outfit{}, domain.ErrNoPhoto
	}
	if err != nil {
		return Outfit{}, err
	}
	list, err := uc.Selected(ctx, sessionID)
	if err != nil {
		return Outfit{}, err
	}
	if len(list) == 0 {
		return Outfit{}, domain.ErrEmptySelection
	}
	m := uc.Room(sessionID)
	o := Outfit{UserImage: photo}
	for _, g := range list {
		p, _ := m.Placement(g.ID)
		o.Clothes = append(o.Clothes, OutfitItem{Garment: g, Placement: p})
	}
	b, err := json.Marshal(o)
	if err != nil {
		return Outfit{}, err
	}
	if err := uc.KV.Set(ctx, localNS, OutfitKey, string(b)); err != nil {
		return Outfit{}, err
	}
	return o, nil
}

// AddFocusedToCart agrega al carrito la prenda con foco.
func (uc *FittingUC) AddFocusedToCart(ctx context.Context, sessionID, localNS string, carts *CartUC) (cart.Summary, error) {
	id := uc.Room(sessionID).Focus()
	if id == "" {
		return cart.Summary{}, domain.ErrEmptySelection
	}
	return carts.Add(ctx, localNS, domain.CartKey{ItemID: id})
}

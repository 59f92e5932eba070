package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/phenrril/stylevision/internal/adapters/spreadsheet"
	"github.com/phenrril/stylevision/internal/cart"
	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/handoff"
)

type CartUC struct {
	Registry *Registry
	Garments domain.GarmentRepo
	Handoff  *handoff.Composer
}

// normalizeKey recorta espacios para que el mismo input siempre dé la misma clave.
func normalizeKey(k domain.CartKey) domain.CartKey {
	return domain.CartKey{
		ItemID: strings.TrimSpace(k.ItemID),
		Size:   strings.TrimSpace(k.Size),
		Color:  strings.TrimSpace(k.Color),
	}
}

func (uc *CartUC) Summary(ctx context.Context, ns string) (cart.Summary, error) {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return cart.Summary{}, err
	}
	return s.Summary(), nil
}

// Add toma nombre, imagen y precio del catálogo, no del cliente.
func (uc *CartUC) Add(ctx context.Context, ns string, k domain.CartKey) (cart.Summary, error) {
	k = normalizeKey(k)
	if k.ItemID == "" {
		return cart.Summary{}, errors.New("id vacío")
	}
	g, err := uc.Garments.FindByID(ctx, k.ItemID)
	if err != nil {
		return cart.Summary{}, err
	}
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return cart.Summary{}, err
	}
	if err := s.Add(ctx, *g, k.Size, k.Color); err != nil {
		return cart.Summary{}, err
	}
	return s.Summary(), nil
}

func (uc *CartUC) Remove(ctx context.Context, ns string, k domain.CartKey) (cart.Summary, error) {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return cart.Summary{}, err
	}
	if err := s.Remove(ctx, normalizeKey(k)); err != nil {
		return cart.Summary{}, err
	}
	return s.Summary(), nil
}

func (uc *CartUC) SetQuantity(ctx context.Context, ns string, k domain.CartKey, qty int) (cart.Summary, error) {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return cart.Summary{}, err
	}
	if err := s.SetQuantity(ctx, normalizeKey(k), qty); err != nil {
		return cart.Summary{}, err
	}
	return s.Summary(), nil
}

func (uc *CartUC) Clear(ctx context.Context, ns string) error {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return err
	}
	return s.Clear(ctx)
}

func (uc *CartUC) Contains(ctx context.Context, ns string, k domain.CartKey) (bool, error) {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return false, err
	}
	return s.Contains(normalizeKey(k)), nil
}

// Checkout devuelve el link de WhatsApp con el pedido; con carrito vacío devuelve ErrEmptyCart.
func (uc *CartUC) Checkout(ctx context.Context, ns string) (string, error) {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return "", err
	}
	msg, err := handoff.CartMessage(s.Lines())
	if err != nil {
		return "", err
	}
	return uc.Handoff.Link(msg), nil
}

func (uc *CartUC) Export(ctx context.Context, ns string) ([]byte, error) {
	s, err := uc.Registry.Cart(ctx, ns)
	if err != nil {
		return nil, err
	}
	return spreadsheet.CartWorkbook(s.Lines())
}

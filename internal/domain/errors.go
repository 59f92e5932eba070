package domain

import "errors"

var (
	ErrNotFound        = errors.New("no encontrado")
	ErrEmptyCart       = errors.New("carrinho vazio")
	ErrEmptySelection  = errors.New("nenhuma roupa selecionada")
	ErrNotImage        = errors.New("arquivo não é uma imagem")
	ErrTooLarge        = errors.New("arquivo muito grande")
	ErrNoPhoto         = errors.New("nenhuma foto enviada")
	ErrInvalidQuantity = errors.New("quantidade inválida")
)

// Package handoff arma el mensaje del pedido y el link de WhatsApp que lo abre.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/phenrril/stylevision/internal/cart"
	"github.com/phenrril/stylevision/internal/domain"
)

const DefaultNumber = "5511986445725"

const closing = "Aguardo contato para finalizar a compra! 😊"

type Composer struct {
	number string
}

func NewComposer(number string) *Composer {
	n := strings.TrimSpace(strings.TrimPrefix(number, "+"))
	if n == "" {
		n = DefaultNumber
	}
	return &Composer{number: n}
}

func (c *Composer) Number() string { return c.number }

// Link devuelve el deep-link de WhatsApp; no se espera respuesta.
func (c *Composer) Link(text string) string {
	return "https://wa.me/" + c.number + "?text=" + EncodeURIComponent(text)
}

// EncodeURIComponent codifica igual que la función de JS (espacio como %20).
func EncodeURIComponent(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	for _, r := range []string{"!", "'", "(", ")", "*"} {
		e = strings.ReplaceAll(e, url.QueryEscape(r), r)
	}
	return e
}

// CartMessage resume el carrito con subtotales y totales.
func CartMessage(lines []domain.CartLine) (string, error) {
	if len(lines) == 0 {
		return "", domain.ErrEmptyCart
	}
	var b strings.Builder
	b.WriteString("🛍️ *Olá! Gostaria de finalizar minha compra:*\n\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, l.Name)
		fmt.Fprintf(&b, "   📂 Categoria: %s\n", l.Category)
		if l.Size != "" {
			fmt.Fprintf(&b, "   📏 Tamanho: %s\n", l.Size)
		}
		if l.Color != "" {
			fmt.Fprintf(&b, "   🎨 Cor: %s\n", l.Color)
		}
		fmt.Fprintf(&b, "   💰 Preço: %s\n", FormatBRL(l.Price))
		fmt.Fprintf(&b, "   🔢 Quantidade: %d\n", l.Quantity)
		fmt.Fprintf(&b, "   💳 Subtotal: %s\n\n", FormatBRL(l.Subtotal()))
	}
	fmt.Fprintf(&b, "🛒 *Total de itens:* %d\n", cart.TotalQuantity(lines))
	fmt.Fprintf(&b, "💰 *Valor total:* %s\n\n", FormatBRL(cart.TotalPrice(lines)))
	b.WriteString("🚚 *Frete:* Grátis\n\n")
	b.WriteString(closing)
	return b.String(), nil
}

// SelectionMessage lista lo que el cliente se probó en el probador.
func SelectionMessage(garments []domain.Garment) (string, error) {
	if len(garments) == 0 {
		return "", domain.ErrEmptySelection
	}
	var b strings.Builder
	b.WriteString("👗 *Olá! Testei as roupas no provador virtual e gostaria de comprar:*\n\n")
	total := 0.0
	for i, g := range garments {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, g.Name)
		fmt.Fprintf(&b, "   📂 %s\n", g.Category)
		fmt.Fprintf(&b, "   💰 %s\n\n", FormatBRL(g.Price))
		total += g.Price
	}
	fmt.Fprintf(&b, "🛒 *Total de itens:* %d\n", len(garments))
	fmt.Fprintf(&b, "💰 *Valor total:* %s\n\n", FormatBRL(total))
	b.WriteString("🚚 *Frete:* Grátis\n\n")
	b.WriteString("Testei tudo no provador virtual e ficou perfeito! 😍\n")
	b.WriteString(closing)
	return b.String(), nil
}

func ItemMessage(g domain.Garment) string {
	var b strings.Builder
	b.WriteString("🛍️ *Olá! Gostaria de comprar este item:*\n\n")
	fmt.Fprintf(&b, "👗 *%s*\n", g.Name)
	fmt.Fprintf(&b, "📂 Categoria: %s\n", g.Category)
	fmt.Fprintf(&b, "💰 Preço: %s\n\n", FormatBRL(g.Price))
	b.WriteString("🚚 *Frete:* Grátis\n\n")
	b.WriteString(closing)
	return b.String()
}

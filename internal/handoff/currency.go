package handoff

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL imita Intl.NumberFormat('pt-BR', {style: 'currency', currency: 'BRL'}).
func FormatBRL(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	return sign + "R$ " + brl.Sprintf("%.2f", v)
}

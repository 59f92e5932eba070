package cart

import "github.com/phenrril/stylevision/internal/domain"

type Summary struct {
	Lines         []domain.CartLine `json:"items"`
	LineCount     int               `json:"line_count"`
	TotalQuantity int               `json:"total_quantity"`
	TotalPrice    float64           `json:"total_price"`
}

func LineCount(lines []domain.CartLine) int { return len(lines) }

func TotalQuantity(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func TotalPrice(lines []domain.CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func Summarize(lines []domain.CartLine) Summary {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return Summary{
		Lines:         lines,
		LineCount:     LineCount(lines),
		TotalQuantity: TotalQuantity(lines),
		TotalPrice:    TotalPrice(lines),
	}
}

package domain

// CartKey identifica una línea del carrito. Size y Color vacíos equivalen a "sin talle"/"sin color".
type CartKey struct {
	ItemID string
	Size   string
	Color  string
}

// CartLine usa los mismos nombres de campo que el carrito guardado por el front.
type CartLine struct {
	ItemID   string  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
}

func (l CartLine) Key() CartKey {
	return CartKey{ItemID: l.ItemID, Size: l.Size, Color: l.Color}
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

package domain

import "fmt"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement es la posición, escala y orden de apilado de una prenda sobre la foto.
type Placement struct {
	GarmentID  string  `json:"garment_id"`
	Position   Point   `json:"position"`
	Scale      float64 `json:"scale"`
	StackOrder int     `json:"stack_order"`
}

// Transform arma el valor CSS; sólo para presentación.
func (p Placement) Transform() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", p.Position.X, p.Position.Y, p.Scale)
}

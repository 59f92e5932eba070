// Package overlay mantiene la ubicación de las prendas superpuestas en el
// probador virtual e interpreta los gestos de arrastre y pellizco.
package overlay

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/stylevision/internal/domain"
)

const (
	MinScale       = 0.1
	MaxScale       = 3.0
	ZoomStep       = 0.1
	BaseStackOrder = 5
	DefaultOffset  = 30.0
	RefocusDelay   = 50 * time.Millisecond
)

type Gesture int

const (
	Idle Gesture = iota
	Dragging
	Pinching
)

func (g Gesture) String() string {
	switch g {
	case Dragging:
		return "dragging"
	case Pinching:
		return "pinching"
	default:
		return "idle"
	}
}

// Scheduler ejecuta fn una vez pasado d. No hay forma de cancelarlo.
type Scheduler func(d time.Duration, fn func())

func afterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

type Option func(*Manipulator)

func WithScheduler(s Scheduler) Option {
	return func(m *Manipulator) {
		if s != nil {
			m.schedule = s
		}
	}
}

// State es una foto del probador para serializar.
type State struct {
	Placements []domain.Placement `json:"placements"`
	Focus      string             `json:"focus,omitempty"`
	Gesture    string             `json:"gesture"`
}

type Manipulator struct {
	mu         sync.Mutex
	placements map[string]*domain.Placement
	order      []string
	focus      string
	maxStack   int

	gesture    Gesture
	target     string
	last       domain.Point
	pinchDist  float64
	pinchScale float64

	schedule Scheduler
}

func New(opts ...Option) *Manipulator {
	m := &Manipulator{
		placements: map[string]*domain.Placement{},
		maxStack:   BaseStackOrder,
		schedule:   afterFunc,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func clampScale(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Min(MaxScale, math.Max(MinScale, v))
}

func distance(a, b domain.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func (m *Manipulator) nextStack() int {
	m.maxStack++
	return m.maxStack
}

// selectLocked enfoca id y consume un número de apilado aunque la prenda no esté ubicada.
func (m *Manipulator) selectLocked(id string) (*domain.Placement, bool) {
	m.focus = id
	n := m.nextStack()
	p, ok := m.placements[id]
	if !ok {
		return nil, false
	}
	p.StackOrder = n
	return p, true
}

// Select enfoca la prenda y la trae al frente. Una prenda sin ubicación no se crea.
func (m *Manipulator) Select(id string) (domain.Placement, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.selectLocked(id)
	if !ok {
		return domain.Placement{}, false
	}
	return *p, true
}

// SetSelection sincroniza las ubicaciones con la lista de prendas elegidas en el catálogo.
func (m *Manipulator) SetSelection(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	for _, id := range append([]string(nil), m.order...) {
		if _, ok := keep[id]; !ok {
			m.removeLocked(id)
		}
	}
	added := false
	for i, id := range ids {
		if _, ok := m.placements[id]; ok {
			continue
		}
		off := float64(i) * DefaultOffset
		m.placements[id] = &domain.Placement{GarmentID: id, Position: domain.Point{X: off, Y: off}, Scale: 1, StackOrder: m.nextStack()}
		m.order = append(m.order, id)
		added = true
	}
	// la prenda con foco sigue arriba de las recién agregadas
	if p := m.focused(); p != nil && added {
		p.StackOrder = m.nextStack()
	}
}

// Deselect quita el foco salvo que haya un gesto en curso. Devuelve si se aplicó.
func (m *Manipulator) Deselect() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gesture != Idle {
		return false
	}
	m.focus = ""
	return true
}

// BeginDrag devuelve false si hay un pinch en curso o la prenda no está ubicada.
func (m *Manipulator) BeginDrag(id string, at domain.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gesture == Pinching {
		return false
	}
	if _, ok := m.placements[id]; !ok {
		return false
	}
	m.selectLocked(id)
	m.gesture = Dragging
	m.target = id
	m.last = at
	return true
}

func (m *Manipulator) ContinueDrag(at domain.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gesture != Dragging {
		return
	}
	if p, ok := m.placements[m.target]; ok {
		p.Position.X += at.X - m.last.X
		p.Position.Y += at.Y - m.last.Y
	}
	m.last = at
}

func (m *Manipulator) EndDrag() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gesture != Dragging {
		return
	}
	id := m.target
	m.gesture = Idle
	m.target = ""
	m.schedule(RefocusDelay, func() { m.refocus(id) })
}

// refocus corre después del drag; un click rápido no debe perder el foco.
func (m *Manipulator) refocus(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.placements[id]; !ok {
		return
	}
	if m.focus != "" && m.focus != id {
		return
	}
	m.selectLocked(id)
}

// BeginPinch gana sobre un drag en curso. Sin ubicación para id no hace nada.
func (m *Manipulator) BeginPinch(id string, a, b domain.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.placements[id]; !ok {
		return false
	}
	p, _ := m.selectLocked(id)
	m.gesture = Pinching
	m.target = id
	m.pinchDist = distance(a, b)
	m.pinchScale = p.Scale
	return true
}

func (m *Manipulator) ContinuePinch(a, b domain.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gesture != Pinching || m.pinchDist == 0 {
		return
	}
	p, ok := m.placements[m.target]
	if !ok {
		return
	}
	s := m.pinchScale * distance(a, b) / m.pinchDist
	if math.IsInf(s, 0) || math.IsNaN(s) {
		log.Debug().Str("garment", m.target).Msg("pinch scale no finita, se ignora")
		return
	}
	p.Scale = clampScale(s)
}

func (m *Manipulator) EndPinch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gesture != Pinching {
		return
	}
	m.gesture = Idle
	m.target = ""
	m.pinchDist = 0
}

func (m *Manipulator) focused() *domain.Placement {
	if m.focus == "" {
		return nil
	}
	return m.placements[m.focus]
}

func (m *Manipulator) ZoomIn() { m.zoom(ZoomStep) }

func (m *Manipulator) ZoomOut() { m.zoom(-ZoomStep) }

func (m *Manipulator) zoom(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.focused(); p != nil {
		// redondeo para que 10 pasos de 0.1 den exactamente 1
		p.Scale = clampScale(math.Round((p.Scale+delta)*1e9) / 1e9)
	}
}

func (m *Manipulator) ResetZoom() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.focused(); p != nil {
		p.Scale = 1
		p.Position = domain.Point{}
	}
}

func (m *Manipulator) removeLocked(id string) {
	if _, ok := m.placements[id]; !ok {
		return
	}
	delete(m.placements, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.focus == id {
		m.focus = ""
	}
	if m.target == id {
		m.gesture = Idle
		m.target = ""
	}
}

func (m *Manipulator) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *Manipulator) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placements = map[string]*domain.Placement{}
	m.order = nil
	m.focus = ""
	m.gesture = Idle
	m.target = ""
}

func (m *Manipulator) Placement(id string) (domain.Placement, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.placements[id]
	if !ok {
		return domain.Placement{}, false
	}
	return *p, true
}

func (m *Manipulator) Focus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus
}

func (m *Manipulator) Gesture() Gesture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gesture
}

// IsManipulating indica si hay un drag o pinch activo.
func (m *Manipulator) IsManipulating() bool { return m.Gesture() != Idle }

// IDs devuelve las prendas en el orden en que se agregaron.
func (m *Manipulator) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Snapshot ordena de atrás hacia adelante.
func (m *Manipulator) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State{Placements: make([]domain.Placement, 0, len(m.placements)), Focus: m.focus, Gesture: m.gesture.String()}
	for _, p := range m.placements {
		st.Placements = append(st.Placements, *p)
	}
	sort.Slice(st.Placements, func(i, j int) bool { return st.Placements[i].StackOrder < st.Placements[j].StackOrder })
	return st
}

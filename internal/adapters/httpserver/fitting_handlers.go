package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/overlay"
)

type gestureReq struct {
	GarmentID string         `json:"garment_id"`
	Point     *domain.Point  `json:"point,omitempty"`
	Touches   []domain.Point `json:"touches,omitempty"`
}

func (s *Server) room(w http.ResponseWriter, r *http.Request) (*overlay.Manipulator, identity) {
	id := s.identify(w, r)
	return s.fitting.Room(id.SessionID), id
}

func (s *Server) writeState(w http.ResponseWriter, m *overlay.Manipulator) {
	writeJSON(w, 200, m.Snapshot())
}

// placed responde 404 si la prenda no está en el probador.
func placed(w http.ResponseWriter, r *http.Request, m *overlay.Manipulator, garmentID string) bool {
	if _, ok := m.Placement(garmentID); !ok {
		writeErr(w, r, fmt.Errorf("prenda %q fuera del probador: %w", garmentID, domain.ErrNotFound))
		return false
	}
	return true
}

func (s *Server) apiFittingState(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	m, _ := s.room(w, r)
	s.writeState(w, m)
}

func (s *Server) apiFittingSelection(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPut) {
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	id := s.identify(w, r)
	st, err := s.fitting.SetSelection(r.Context(), id.SessionID, req.IDs)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, st)
}

func (s *Server) decodeGesture(w http.ResponseWriter, r *http.Request) (gestureReq, bool) {
	var req gestureReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return req, false
	}
	return req, true
}

func (s *Server) apiFittingSelect(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	req, ok := s.decodeGesture(w, r)
	if !ok {
		return
	}
	if req.GarmentID == "" {
		writeError(w, http.StatusBadRequest, "garment_id")
		return
	}
	id := s.identify(w, r)
	st, err := s.fitting.Select(r.Context(), id.SessionID, req.GarmentID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, st)
}

// Deselect es el click en el contenedor; no aplica durante un gesto.
func (s *Server) apiFittingDeselect(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	m, _ := s.room(w, r)
	m.Deselect()
	s.writeState(w, m)
}

// POST /api/fitting/drag/{begin|move|end}
func (s *Server) apiFittingDrag(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	step := strings.TrimPrefix(r.URL.Path, "/api/fitting/drag/")
	m, _ := s.room(w, r)
	switch step {
	case "begin", "move":
		req, ok := s.decodeGesture(w, r)
		if !ok {
			return
		}
		if req.Point == nil {
			writeError(w, http.StatusBadRequest, "point")
			return
		}
		if step == "begin" {
			if req.GarmentID == "" {
				writeError(w, http.StatusBadRequest, "garment_id")
				return
			}
			if !placed(w, r, m, req.GarmentID) {
				return
			}
			if !m.BeginDrag(req.GarmentID, *req.Point) {
				writeError(w, http.StatusConflict, "pinch en curso")
				return
			}
		} else {
			m.ContinueDrag(*req.Point)
		}
	case "end":
		m.EndDrag()
	default:
		http.NotFound(w, r)
		return
	}
	s.writeState(w, m)
}

// POST /api/fitting/pinch/{begin|move|end}
func (s *Server) apiFittingPinch(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	step := strings.TrimPrefix(r.URL.Path, "/api/fitting/pinch/")
	m, _ := s.room(w, r)
	switch step {
	case "begin", "move":
		req, ok := s.decodeGesture(w, r)
		if !ok {
			return
		}
		if len(req.Touches) != 2 {
			writeError(w, http.StatusBadRequest, "touches")
			return
		}
		if step == "begin" {
			if req.GarmentID == "" {
				writeError(w, http.StatusBadRequest, "garment_id")
				return
			}
			if !placed(w, r, m, req.GarmentID) {
				return
			}
			m.BeginPinch(req.GarmentID, req.Touches[0], req.Touches[1])
		} else {
			m.ContinuePinch(req.Touches[0], req.Touches[1])
		}
	case "end":
		m.EndPinch()
	default:
		http.NotFound(w, r)
		return
	}
	s.writeState(w, m)
}

// POST /api/fitting/zoom/{in|out|reset}
func (s *Server) apiFittingZoom(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	m, _ := s.room(w, r)
	switch strings.TrimPrefix(r.URL.Path, "/api/fitting/zoom/") {
	case "in":
		m.ZoomIn()
	case "out":
		m.ZoomOut()
	case "reset":
		m.ResetZoom()
	default:
		http.NotFound(w, r)
		return
	}
	s.writeState(w, m)
}

func (s *Server) apiFittingRemoveAll(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodDelete) {
		return
	}
	m, _ := s.room(w, r)
	m.RemoveAll()
	s.writeState(w, m)
}

func (s *Server) apiFittingRemove(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodDelete) {
		return
	}
	gid := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/fitting/garments/"), "/")
	if gid == "" {
		writeError(w, http.StatusBadRequest, "garment_id")
		return
	}
	m, _ := s.room(w, r)
	m.Remove(gid)
	s.writeState(w, m)
}

func (s *Server) apiFittingOutfit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id := s.identify(w, r)
	o, err := s.fitting.SaveOutfit(r.Context(), id.SessionID, id.LocalNS())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 201, map[string]any{"clothes": len(o.Clothes)})
}

func (s *Server) apiFittingCheckout(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id := s.identify(w, r)
	link, err := s.fitting.Checkout(r.Context(), id.SessionID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]string{"url": link})
}

func (s *Server) apiFittingCart(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id := s.identify(w, r)
	sum, err := s.fitting.AddFocusedToCart(r.Context(), id.SessionID, id.LocalNS(), s.carts)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, sum)
}

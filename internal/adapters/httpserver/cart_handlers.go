package httpserver

import (
	"net/http"

	"github.com/phenrril/stylevision/internal/domain"
)

type cartItemReq struct {
	ID       string `json:"id"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity *int   `json:"quantity,omitempty"`
}

func (c cartItemReq) key() domain.CartKey {
	return domain.CartKey{ItemID: c.ID, Size: c.Size, Color: c.Color}
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	id := s.identify(w, r)
	if r.Method == http.MethodDelete {
		if err := s.carts.Clear(r.Context(), id.LocalNS()); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	sum, err := s.carts.Summary(r.Context(), id.LocalNS())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, sum)
}

// POST agrega, PATCH cambia la cantidad, DELETE quita la línea.
func (s *Server) apiCartItems(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost, http.MethodPatch, http.MethodDelete) {
		return
	}
	var req cartItemReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id")
		return
	}
	id := s.identify(w, r)
	ns := id.LocalNS()
	var err error
	var code = 200
	switch r.Method {
	case http.MethodPost:
		_, err = s.carts.Add(r.Context(), ns, req.key())
		code = 201
	case http.MethodPatch:
		if req.Quantity == nil {
			writeError(w, http.StatusBadRequest, "quantity")
			return
		}
		_, err = s.carts.SetQuantity(r.Context(), ns, req.key(), *req.Quantity)
	case http.MethodDelete:
		_, err = s.carts.Remove(r.Context(), ns, req.key())
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	sum, err := s.carts.Summary(r.Context(), ns)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, code, sum)
}

func (s *Server) apiCartContains(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	id := s.identify(w, r)
	ok, err := s.carts.Contains(r.Context(), id.LocalNS(), domain.CartKey{ItemID: q.Get("id"), Size: q.Get("size"), Color: q.Get("color")})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]bool{"contains": ok})
}

func (s *Server) apiCartCheckout(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id := s.identify(w, r)
	link, err := s.carts.Checkout(r.Context(), id.LocalNS())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]string{"url": link})
}

func (s *Server) apiCartExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	id := s.identify(w, r)
	data, err := s.carts.Export(r.Context(), id.LocalNS())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=carrinho.xlsx")
	_, _ = w.Write(data)
}

package httpserver

import (
	"net/http"
	"strings"

	"github.com/phenrril/stylevision/internal/domain"
)

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	list, err := s.catalog.List(r.Context(), domain.GarmentFilter{Category: r.URL.Query().Get("category")})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "categories": cats})
}

// GET /api/catalog/{id} · GET /api/catalog/{id}/whatsapp
func (s *Server) apiCatalogItem(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/catalog/"), "/")
	id, action, _ := strings.Cut(rest, "/")
	switch action {
	case "":
		g, err := s.catalog.Get(r.Context(), id)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, 200, g)
	case "whatsapp":
		link, err := s.catalog.BuyLink(r.Context(), id)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, 200, map[string]string{"url": link})
	default:
		http.NotFound(w, r)
	}
}

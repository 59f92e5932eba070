package httpserver

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/stylevision/internal/adapters/spreadsheet"
)

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.opts.AdminAPIKey == "" {
		log.Error().Msg("ADMIN_API_KEY faltante")
		writeError(w, http.StatusServiceUnavailable, "config")
		return false
	}
	key := r.Header.Get("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.AdminAPIKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

// handleAdminCatalogImport recibe un XLSX (campo "file") y hace upsert del catálogo.
func (s *Server) handleAdminCatalogImport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file")
		return
	}
	defer file.Close()
	list, err := spreadsheet.ParseCatalog(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.catalog.Import(r.Context(), list)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	log.Info().Int("garments", n).Msg("catálogo importado")
	writeJSON(w, 200, map[string]int{"imported": n})
}

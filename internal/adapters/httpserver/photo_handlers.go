package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/stylevision/internal/domain"
)

func (s *Server) apiPhoto(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost, http.MethodDelete) {
		return
	}
	id := s.identify(w, r)
	switch r.Method {
	case http.MethodGet:
		img, err := s.photos.Get(r.Context(), id.SessionNS())
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, 200, map[string]string{"image": img})
	case http.MethodPost:
		limit := s.opts.MaxUploadMB << 20
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeErr(w, r, domain.ErrTooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, "form")
			return
		}
		file, _, err := r.FormFile("photo")
		if err != nil {
			writeError(w, http.StatusBadRequest, "photo")
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "photo")
			return
		}
		img, err := s.photos.Upload(r.Context(), id.SessionNS(), data)
		if err != nil {
			if errors.Is(err, domain.ErrNotImage) {
				log.Warn().Str("session", id.SessionID).Msg("upload rechazado: no es imagen")
			}
			writeErr(w, r, err)
			return
		}
		writeJSON(w, 201, map[string]any{"image": img, "bytes": len(data)})
	case http.MethodDelete:
		if err := s.photos.Remove(r.Context(), id.SessionNS()); err != nil {
			writeErr(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/usecase"
)

type Options struct {
	SessionKey    []byte
	AdminAPIKey   string
	SecureCookies bool
	MaxUploadMB   int64
	UserInfoURL   string
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type Server struct {
	mux       *http.ServeMux
	catalog   *usecase.CatalogUC
	carts     *usecase.CartUC
	fitting   *usecase.FittingUC
	photos    *usecase.PhotoUC
	customers domain.CustomerRepo
	oauthCfg  *oauth2.Config
	opts      Options
}

func New(c *usecase.CatalogUC, carts *usecase.CartUC, f *usecase.FittingUC, p *usecase.PhotoUC, customers domain.CustomerRepo, oauthCfg *oauth2.Config, opts Options) http.Handler {
	if len(opts.SessionKey) == 0 {
		opts.SessionKey = []byte("dev-insecure")
	}
	if opts.UserInfoURL == "" {
		opts.UserInfoURL = googleUserInfoURL
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 10
	}
	s := &Server{mux: http.NewServeMux(), catalog: c, carts: carts, fitting: f, photos: p, customers: customers, oauthCfg: oauthCfg, opts: opts}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("/api/catalog", s.apiCatalog)
	s.mux.HandleFunc("/api/catalog/", s.apiCatalogItem)

	s.mux.HandleFunc("/api/photo", s.apiPhoto)

	s.mux.HandleFunc("/api/fitting", s.apiFittingState)
	s.mux.HandleFunc("/api/fitting/selection", s.apiFittingSelection)
	s.mux.HandleFunc("/api/fitting/select", s.apiFittingSelect)
	s.mux.HandleFunc("/api/fitting/deselect", s.apiFittingDeselect)
	s.mux.HandleFunc("/api/fitting/drag/", s.apiFittingDrag)
	s.mux.HandleFunc("/api/fitting/pinch/", s.apiFittingPinch)
	s.mux.HandleFunc("/api/fitting/zoom/", s.apiFittingZoom)
	s.mux.HandleFunc("/api/fitting/garments", s.apiFittingRemoveAll)
	s.mux.HandleFunc("/api/fitting/garments/", s.apiFittingRemove)
	s.mux.HandleFunc("/api/fitting/outfit", s.apiFittingOutfit)
	s.mux.HandleFunc("/api/fitting/checkout", s.apiFittingCheckout)
	s.mux.HandleFunc("/api/fitting/cart", s.apiFittingCart)

	s.mux.HandleFunc("/api/cart", s.apiCart)
	s.mux.HandleFunc("/api/cart/items", s.apiCartItems)
	s.mux.HandleFunc("/api/cart/contains", s.apiCartContains)
	s.mux.HandleFunc("/api/cart/checkout", s.apiCartCheckout)
	s.mux.HandleFunc("/api/cart/export.xlsx", s.apiCartExport)

	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("/logout", s.handleLogout)

	s.mux.HandleFunc("/admin/catalog/import", s.handleAdminCatalogImport)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeErr traduce los errores de dominio a códigos HTTP.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotImage):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrEmptySelection), errors.Is(err, domain.ErrNoPhoto):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("error interno")
		writeError(w, http.StatusInternalServerError, "error interno")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method")
	return false
}

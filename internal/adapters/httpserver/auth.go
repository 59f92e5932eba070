package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/phenrril/stylevision/internal/domain"
)

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth no configurado", 500)
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true, Secure: s.opts.SecureCookies})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), 302)
}

func (s *Server) clearOAuthState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.opts.SecureCookies})
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth no configurado", 500)
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	// el state es de un solo uso
	s.clearOAuthState(w)
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		http.Error(w, "state", 400)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("exchange oauth")
		http.Error(w, "oauth", 400)
		return
	}
	resp, err := s.oauthCfg.Client(r.Context(), tok).Get(s.opts.UserInfoURL)
	if err != nil {
		log.Error().Err(err).Msg("userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		log.Error().Int("status", resp.StatusCode).Msg("userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		log.Error().Err(err).Msg("leer userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	var info sessionUser
	if err := json.Unmarshal(body, &info); err != nil {
		log.Error().Err(err).Msg("decodificar userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	info.Email = domain.NormalizeEmail(info.Email)
	if info.Email == "" {
		http.Error(w, "email", 400)
		return
	}
	if s.customers != nil {
		if err := s.customers.UpsertByEmail(r.Context(), &domain.Customer{Email: info.Email, Name: info.Name}); err != nil {
			log.Error().Err(err).Str("email", info.Email).Msg("guardar cliente")
			writeErr(w, r, err)
			return
		}
	}
	s.writeUserSession(w, &info)
	http.Redirect(w, r, "/", 302)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.writeUserSession(w, nil)
	http.Redirect(w, r, "/", 302)
}

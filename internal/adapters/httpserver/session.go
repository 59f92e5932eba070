package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/stylevision/internal/domain"
)

const (
	visitorCookie = "vid"
	sessionCookie = "sid"
	userCookie    = "sess"
	visitorMaxAge = 60 * 60 * 24 * 365
	userMaxAge    = 60 * 60 * 24 * 7
)

type sessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// identity agrupa los namespaces de almacenamiento de un request.
type identity struct {
	VisitorID string
	SessionID string
	User      *sessionUser
}

// LocalNS es el namespace persistente; si hay login el carrito sigue al email.
func (id identity) LocalNS() string {
	if id.User != nil {
		return domain.LocalNamespace("user:" + id.User.Email)
	}
	return domain.LocalNamespace(id.VisitorID)
}

func (id identity) SessionNS() string { return domain.SessionNamespace(id.SessionID) }

func (s *Server) sign(payload []byte) string {
	h := hmac.New(sha256.New, s.opts.SessionKey)
	h.Write(payload)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)) + "." + base64.RawURLEncoding.EncodeToString(payload)
}

func (s *Server) verify(val string) ([]byte, bool) {
	parts := strings.SplitN(val, ".", 2)
	if len(parts) != 2 {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	h := hmac.New(sha256.New, s.opts.SessionKey)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil, false
	}
	return payload, true
}

func (s *Server) readID(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return ""
	}
	payload, ok := s.verify(c.Value)
	if !ok {
		return ""
	}
	id, err := uuid.ParseBytes(payload)
	if err != nil {
		return ""
	}
	return id.String()
}

// identify lee las cookies y emite las que falten.
func (s *Server) identify(w http.ResponseWriter, r *http.Request) identity {
	id := identity{VisitorID: s.readID(r, visitorCookie), SessionID: s.readID(r, sessionCookie), User: s.readUserSession(r)}
	if id.VisitorID == "" {
		id.VisitorID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{Name: visitorCookie, Value: s.sign([]byte(id.VisitorID)), Path: "/", MaxAge: visitorMaxAge, HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteLaxMode})
	}
	if id.SessionID == "" {
		id.SessionID = uuid.NewString()
		// sin MaxAge: muere al cerrar el navegador
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: s.sign([]byte(id.SessionID)), Path: "/", HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteLaxMode})
	}
	return id
}

func (s *Server) writeUserSession(w http.ResponseWriter, u *sessionUser) {
	if u == nil {
		http.SetCookie(w, &http.Cookie{Name: userCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteLaxMode})
		return
	}
	b, _ := json.Marshal(u)
	http.SetCookie(w, &http.Cookie{Name: userCookie, Value: s.sign(b), Path: "/", MaxAge: userMaxAge, HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteLaxMode})
}

func (s *Server) readUserSession(r *http.Request) *sessionUser {
	c, err := r.Cookie(userCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	payload, ok := s.verify(c.Value)
	if !ok {
		return nil
	}
	var u sessionUser
	if err := json.Unmarshal(payload, &u); err != nil || u.Email == "" {
		return nil
	}
	return &u
}

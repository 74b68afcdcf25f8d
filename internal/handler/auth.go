package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/i18n"
	"github.com/pkordes/car-rental/internal/middleware"
	"github.com/pkordes/car-rental/internal/service"
)

// MessageResponse carries a single localized message.
type MessageResponse struct {
	Message string `json:"message"`
}

// signup handles POST /api/auth/signup.
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in domain.Credentials
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	res, err := s.auth.Signup(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.setSessionCookie(w, res)
	writeJSON(w, http.StatusCreated, res.User)
}

// login handles POST /api/auth/login. Unknown usernames and wrong passwords
// produce the same response.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in domain.Credentials
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	res, err := s.auth.Login(r.Context(), in)
	if errors.Is(err, domain.ErrUnauthenticated) {
		p := s.loc.Printer(r.Header.Get("Accept-Language"))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: p.Sprintf(i18n.MsgInvalidCredentials), Code: "unauthenticated",
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.setSessionCookie(w, res)
	writeJSON(w, http.StatusOK, res.User)
}

// logout handles POST /api/auth/logout. It always clears the cookie, even
// when there was no session to destroy.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cookie.Name); err == nil && c.Value != "" {
		if err := s.auth.Logout(r.Context(), c.Value); err != nil {
			s.writeError(w, r, err, "")
			return
		}
	}
	s.clearSessionCookie(w)

	p := s.loc.Printer(r.Header.Get("Accept-Language"))
	writeJSON(w, http.StatusOK, MessageResponse{Message: p.Sprintf(i18n.MsgLoggedOut)})
}

// me handles GET /api/auth/me.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, r, domain.ErrUnauthenticated, "")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, res service.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		MaxAge:   int(time.Until(res.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

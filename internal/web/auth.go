package web

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"golang.org/x/crypto/bcrypt"

	"github.com/yuzeguitarist/qrforge/internal/logger"
)

// AuthEnabled reports whether a password is configured for the UI.
func (s *Server) AuthEnabled() bool { return s.Config.Web.PasswordBcrypt != "" }

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.loginForm(w, r, "")
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request, msg string) {
	if msg != "" {
		w.WriteHeader(http.StatusUnauthorized)
	}
	s.render(w, "login.html", map[string]any{
		"CSRFField":   csrf.TemplateField(r),
		"TOTPEnabled": s.Config.Web.TOTPSecret != "",
		"Error":       msg,
	})
}

func (s *Server) loginPost(w http.ResponseWriter, r *http.Request) {
	if !s.AuthEnabled() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	_ = r.ParseForm()
	u := r.FormValue("username")
	p := r.FormValue("password")
	code := r.FormValue("totp")

	cfg := s.Config.Web
	if u != cfg.Username || bcrypt.CompareHashAndPassword([]byte(cfg.PasswordBcrypt), []byte(p)) != nil {
		s.Log.Warn("login failed", logger.ClientIP(clientIP(r)))
		s.audit(r, u, "login_failed", "", "password")
		s.loginForm(w, r, "invalid credentials")
		return
	}
	if cfg.TOTPSecret != "" && !verifyTOTP(cfg.TOTPSecret, code) {
		s.Log.Warn("login failed: totp", logger.ClientIP(clientIP(r)))
		s.audit(r, u, "login_failed", "", "totp")
		s.loginForm(w, r, "invalid totp")
		return
	}

	sess, _ := s.Store.Get(r, sessionName)
	sess.Values["auth"] = true
	sess.Values["ts"] = time.Now().Unix()
	if err := sess.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Log.Info("login", logger.ClientIP(clientIP(r)))
	s.audit(r, u, "login", "", "")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.Store.Get(r, sessionName)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// requireLogin lets everything through when no password is configured.
// Otherwise the form page redirects to /login and API calls get 401.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}
		sess, _ := s.Store.Get(r, sessionName)
		if v, ok := sess.Values["auth"].(bool); !ok || !v {
			if r.Method == http.MethodGet && r.URL.Path == "/" {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

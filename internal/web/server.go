// Package web serves the interactive form: live preview on every edit,
// save to disk or download, file-to-base64 loading and logo upload.
package web

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/audit"
	"github.com/yuzeguitarist/qrforge/internal/config"
	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/payload"
	"github.com/yuzeguitarist/qrforge/internal/qr"
	"github.com/yuzeguitarist/qrforge/internal/render"
)

const (
	sessionName = "qrforge"
	maxJSONBody = 1 << 20
	maxUpload   = 4 << 20
)

type Server struct {
	Store  *sessions.CookieStore
	Config *config.Config
	Log    *slog.Logger
	Audit  *audit.Log

	csrfKey  []byte
	tmpl     *template.Template
	previews *previewCache
	logos    *logoStore
}

// NewServer prepares the session store, templates and logo storage. Keys
// missing from cfg are generated, so sessions do not survive a restart.
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	sessionKey := []byte(cfg.Web.SessionKey)
	if len(sessionKey) == 0 {
		b, err := app.RandBytes(32)
		if err != nil {
			return nil, err
		}
		sessionKey = b
	}
	csrfSeed := []byte(cfg.Web.CSRFKey)
	if len(csrfSeed) == 0 {
		b, err := app.RandBytes(32)
		if err != nil {
			return nil, err
		}
		csrfSeed = b
	}
	csrfKey := sha256.Sum256(csrfSeed)

	tmpl, err := template.ParseFS(FS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	logos, err := newLogoStore()
	if err != nil {
		return nil, err
	}

	cs := sessions.NewCookieStore(sessionKey)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 8,
		HttpOnly: true,
		Secure:   cfg.Web.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return &Server{
		Store:    cs,
		Config:   cfg,
		Log:      log,
		Audit:    audit.New(cfg.Web.AuditLog),
		csrfKey:  csrfKey[:],
		tmpl:     tmpl,
		previews: newPreviewCache(256),
		logos:    logos,
	}, nil
}

// Close removes uploaded logos.
func (s *Server) Close() error { return s.logos.close() }

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(FS)))
	r.HandleFunc("/login", s.loginPage).Methods("GET")
	r.HandleFunc("/login", s.loginPost).Methods("POST")
	r.HandleFunc("/logout", s.logout).Methods("GET")

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireLogin)
	authed.HandleFunc("/", s.appShell).Methods("GET")
	authed.HandleFunc("/api/preview", s.apiPreview).Methods("POST")
	authed.HandleFunc("/api/save", s.apiSave).Methods("POST")
	authed.HandleFunc("/api/file", s.apiFile).Methods("POST")
	authed.HandleFunc("/api/logo", s.apiLogo).Methods("POST")
	authed.HandleFunc("/api/totp", s.apiTOTP).Methods("POST")

	protect := csrf.Protect(s.csrfKey, csrf.Secure(s.Config.Web.SecureCookies), csrf.Path("/"))
	return s.withRequestID(s.logRequests(protect(r)))
}

func (s *Server) appShell(w http.ResponseWriter, r *http.Request) {
	d := s.Config.Render
	s.render(w, "index.html", map[string]any{
		"CSRFToken": csrf.Token(r),
		"Dark":      d.Dark,
		"Light":     d.Light,
		"Format":    d.Kind,
		"Rounded":   d.Rounded,
		"Level":     d.Error,
		"AuthOn":    s.AuthEnabled(),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error("template", slog.String("name", name), logger.Error(err))
	}
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
}

// statusFor maps render failures to HTTP codes: bad input is the caller's
// fault, file system trouble is ours.
func statusFor(err error) int {
	var ioErr *render.IOError
	switch {
	case errors.As(err, &ioErr):
		return http.StatusInternalServerError
	case errors.Is(err, render.ErrInvalidColor),
		errors.Is(err, render.ErrInvalidStyle),
		errors.Is(err, render.ErrUnknownFormat),
		errors.Is(err, qr.ErrInvalidLevel),
		errors.Is(err, qr.ErrCapacity),
		errors.Is(err, payload.ErrEmptySSID),
		errors.Is(err, payload.ErrSecurity),
		errors.Is(err, payload.ErrSecret),
		errors.Is(err, ErrNoContent),
		errors.Is(err, ErrOutsideSaveDir),
		errors.Is(err, errUnknownLogo):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) audit(r *http.Request, user, action, object, detail string) {
	err := s.Audit.Write(audit.Entry{IP: clientIP(r), User: user, Action: action, Object: object, Detail: detail})
	if err != nil {
		s.Log.Warn("audit", logger.Error(err))
	}
}

func clientIP(r *http.Request) string {
	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	if host == "" {
		return r.RemoteAddr
	}
	return host
}

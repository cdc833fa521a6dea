// Package config loads qrforge settings: built-in defaults, then the YAML
// file, then QRFORGE_* environment variables (optionally from .env).
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/qr"
	"github.com/yuzeguitarist/qrforge/internal/render"
	"github.com/yuzeguitarist/qrforge/internal/service"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "QRFORGE_"

type Config struct {
	Render Render `yaml:"render" envPrefix:"RENDER_"`
	Web    Web    `yaml:"web" envPrefix:"WEB_"`
	Log    Log    `yaml:"log" envPrefix:"LOG_"`
}

// Render holds the defaults for every render request.
type Render struct {
	Kind       string  `yaml:"kind" env:"KIND"`
	Scale      int     `yaml:"scale" env:"SCALE"`
	ModuleSize int     `yaml:"moduleSize" env:"MODULE_SIZE"`
	Border     int     `yaml:"border" env:"BORDER"`
	Error      string  `yaml:"error" env:"ERROR"`
	Dark       string  `yaml:"dark" env:"DARK"`
	Light      string  `yaml:"light" env:"LIGHT"`
	Rounded    bool    `yaml:"rounded" env:"ROUNDED"`
	Logo       string  `yaml:"logo,omitempty" env:"LOGO"`
	LogoScale  float64 `yaml:"logoScale" env:"LOGO_SCALE"`
}

type Web struct {
	Listen         string `yaml:"listen" env:"LISTEN"`
	Username       string `yaml:"username" env:"USERNAME"`
	PasswordBcrypt string `yaml:"passwordBcrypt,omitempty" env:"PASSWORD_BCRYPT"` // empty: no login
	TOTPSecret     string `yaml:"totpSecret,omitempty" env:"TOTP_SECRET"`         // base32; optional second factor
	SessionKey     string `yaml:"sessionKey,omitempty" env:"SESSION_KEY"`         // random per process when empty
	CSRFKey        string `yaml:"csrfKey,omitempty" env:"CSRF_KEY"`               // 32 bytes; random when empty
	SaveDir        string `yaml:"saveDir" env:"SAVE_DIR"`                         // base for relative save paths
	SecureCookies  bool   `yaml:"secureCookies" env:"SECURE_COOKIES"`
	TLS            bool   `yaml:"tls" env:"TLS"` // self-signed unless tlsCert and tlsKey are set
	TLSCert        string `yaml:"tlsCert,omitempty" env:"TLS_CERT"`
	TLSKey         string `yaml:"tlsKey,omitempty" env:"TLS_KEY"`
	AuditLog       string `yaml:"auditLog,omitempty" env:"AUDIT_LOG"` // JSONL of logins and saves; empty: off
}

type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

func Default() *Config {
	req := service.DefaultRequest()
	return &Config{
		Render: Render{
			Kind:       req.Kind,
			Scale:      req.Scale,
			ModuleSize: req.ModuleSize,
			Border:     req.Border,
			Error:      req.Level,
			Dark:       req.Dark,
			Light:      req.Light,
			LogoScale:  req.LogoScale,
		},
		Web: Web{
			Listen:   app.DefaultListen,
			Username: "admin",
			SaveDir:  ".",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads app.EnvFile into the process environment when it exists.
// Variables already set win.
func LoadDotEnv() error {
	if _, err := os.Stat(app.EnvFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(app.EnvFile)
}

// Load reads path (a missing file means defaults) and applies the process
// environment on top.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment; nil means os.Environ.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if _, err := c.Render.Request().Style(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, err := qr.ParseLevel(c.Render.Error); err != nil {
		return fmt.Errorf("render.error: %w", err)
	}
	if _, err := render.ParseFormat(c.Render.Kind); err != nil {
		return fmt.Errorf("render.kind: %w", err)
	}
	if _, _, err := net.SplitHostPort(c.Web.Listen); err != nil {
		return fmt.Errorf("web.listen: %w", err)
	}
	if (c.Web.TLSCert == "") != (c.Web.TLSKey == "") {
		return fmt.Errorf("web.tlsCert and web.tlsKey must be set together")
	}
	if c.Web.PasswordBcrypt != "" && !strings.HasPrefix(c.Web.PasswordBcrypt, "$2") {
		return fmt.Errorf("web.passwordBcrypt: not a bcrypt hash")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// Request turns the render defaults into a service request with no text.
func (r Render) Request() service.Request {
	return service.Request{
		Kind:       r.Kind,
		Scale:      r.Scale,
		ModuleSize: r.ModuleSize,
		Border:     r.Border,
		Level:      r.Error,
		Dark:       r.Dark,
		Light:      r.Light,
		Rounded:    r.Rounded,
		Logo:       r.Logo,
		LogoScale:  r.LogoScale,
	}
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile stores c at path, refusing to replace an existing file unless
// force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	b, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := app.EnsureParentDir(path); err != nil {
		return err
	}
	return app.AtomicWriteFile(path, 0600, b)
}

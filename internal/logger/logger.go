// Package logger builds the process logger and the attributes used with it.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yuzeguitarist/qrforge/internal/app"
)

// New returns a slog logger writing text or json to w at the given level.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log format: unknown %q", format)
}

// Discard is a logger that drops everything, for tests and quiet callers.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Attribute helpers return an empty Attr for zero input so callers can pass
// them unconditionally; slog drops empty attrs.

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Path(p string) slog.Attr {
	if p == "" {
		return slog.Attr{}
	}
	return slog.String("path", p)
}

func Format(f string) slog.Attr { return slog.String("format", f) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

func Method(m string) slog.Attr { return slog.String("method", m) }

func StatusCode(code int) slog.Attr { return slog.Int("status_code", code) }

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func ClientIP(ip string) slog.Attr { return slog.String("client_ip", ip) }

func SSID(ssid string) slog.Attr { return slog.String("ssid", ssid) }

// Secret logs a masked form of value under key.
func Secret(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, app.Mask(value))
}

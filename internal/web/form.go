package web

import (
	"errors"
	"strings"

	"github.com/yuzeguitarist/qrforge/internal/payload"
	"github.com/yuzeguitarist/qrforge/internal/service"
)

var (
	ErrNoContent      = errors.New("content or WiFi required")
	ErrOutsideSaveDir = errors.New("output path must be relative to the save directory")
)

// FormState is what the browser sends on every edit and on save: the
// current value of each form field.
type FormState struct {
	Content  string `json:"content"`
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Security string `json:"security"`
	Out      string `json:"out"`
	Format   string `json:"format"`
	Level    string `json:"level"`
	Dark     string `json:"dark"`
	Light    string `json:"light"`
	Rounded  bool   `json:"rounded"`
	LogoID   string `json:"logoId"`
}

// Text is the QR content: WiFi credentials when an SSID is given, the
// content field otherwise. A preview of an empty form renders a single
// space so there is always something to show.
func (f FormState) Text(preview bool) (string, error) {
	if ssid := strings.TrimSpace(f.SSID); ssid != "" {
		return payload.WiFi(ssid, strings.TrimSpace(f.Password), f.Security)
	}
	content := strings.TrimSpace(f.Content)
	if content == "" {
		if preview {
			return " ", nil
		}
		return "", ErrNoContent
	}
	return content, nil
}

// Request builds a fresh render request from the form on top of base.
func (f FormState) Request(base service.Request, preview bool, logos *logoStore) (service.Request, error) {
	text, err := f.Text(preview)
	if err != nil {
		return service.Request{}, err
	}
	req := base
	req.Text = text
	req.Rounded = f.Rounded
	req.Out = strings.TrimSpace(f.Out)
	if f.Format != "" {
		req.Kind = f.Format
	}
	if f.Level != "" {
		req.Level = f.Level
	}
	if f.Dark != "" {
		req.Dark = f.Dark
	}
	if f.Light != "" {
		req.Light = f.Light
	}
	if f.LogoID != "" {
		path, err := logos.path(f.LogoID)
		if err != nil {
			return service.Request{}, err
		}
		req.Logo = path
	}
	return req, nil
}

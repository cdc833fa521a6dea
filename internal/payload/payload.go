// Package payload builds the text that goes into a QR code for the
// structured conventions the shells offer: WiFi credentials, whole files
// and TOTP enrolment.
package payload

import (
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pquerna/otp/totp"
)

var (
	ErrEmptySSID = errors.New("ssid is empty")
	ErrSecurity  = errors.New("unknown wifi security type")
	ErrSecret    = errors.New("totp secret is not valid base32")
)

// Security types accepted by WiFi.
const (
	SecurityWPA    = "WPA"
	SecurityWEP    = "WEP"
	SecurityNoPass = "nopass"
)

// ParseSecurity normalizes a security type; empty means WPA.
func ParseSecurity(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wpa", "wpa2":
		return SecurityWPA, nil
	case "wep":
		return SecurityWEP, nil
	case "nopass", "none", "open":
		return SecurityNoPass, nil
	}
	return "", fmt.Errorf("%w: %q (want WPA, WEP or nopass)", ErrSecurity, s)
}

var wifiEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)

// WiFi returns the credential string phones understand:
// WIFI:S:<ssid>;T:<security>;P:<password>;;
func WiFi(ssid, password, security string) (string, error) {
	if ssid == "" {
		return "", ErrEmptySSID
	}
	sec, err := ParseSecurity(security)
	if err != nil {
		return "", err
	}
	return "WIFI:S:" + wifiEscaper.Replace(ssid) + ";T:" + sec + ";P:" + wifiEscaper.Replace(password) + ";;", nil
}

func Base64(data []byte) string { return base64.StdEncoding.EncodeToString(data) }

// FileBase64 reads path and returns its bytes as standard base64 text.
func FileBase64(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Base64(b), nil
}

// Excerpt returns the first n runes of s, with "..." appended when cut.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// TOTPOptions describes an authenticator enrolment.
type TOTPOptions struct {
	Issuer  string
	Account string
	// Secret is base32; a random one is generated when empty.
	Secret string
}

// TOTP returns the otpauth:// URI for opts and the base32 secret in it.
func TOTP(opts TOTPOptions) (uri, secret string, err error) {
	g := totp.GenerateOpts{Issuer: opts.Issuer, AccountName: opts.Account}
	if s := strings.ToUpper(strings.ReplaceAll(opts.Secret, " ", "")); s != "" {
		raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(s, "="))
		if err != nil || len(raw) == 0 {
			return "", "", fmt.Errorf("%w: %q", ErrSecret, opts.Secret)
		}
		g.Secret = raw
	}
	key, err := totp.Generate(g)
	if err != nil {
		return "", "", err
	}
	return key.URL(), key.Secret(), nil
}

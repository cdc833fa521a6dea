package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"

	"github.com/yuzeguitarist/qrforge/internal/payload"
)

func verifyTOTP(secret, code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	return totp.Validate(code, secret)
}

// apiTOTP fills the content field with an otpauth:// enrolment URI.
func (s *Server) apiTOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Issuer  string `json:"issuer"`
		Account string `json:"account"`
		Secret  string `json:"secret"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	uri, secret, err := payload.TOTP(payload.TOTPOptions{Issuer: in.Issuer, Account: in.Account, Secret: in.Secret})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, map[string]any{"content": uri, "secret": secret})
}

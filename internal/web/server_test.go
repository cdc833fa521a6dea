package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yuzeguitarist/qrforge/internal/config"
	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/payload"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Web.SaveDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewServer(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path, field, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPreviewReturnsPNG(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiPreview(rec, jsonRequest(t, "/api/preview", FormState{Content: "HELLO"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("X-Preview-Stale"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 290, img.Bounds().Dx())
}

func TestPreviewThumbnailsLargeSymbols(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiPreview(rec, jsonRequest(t, "/api/preview", FormState{Content: strings.Repeat("long content ", 20)}))

	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, previewMax, img.Bounds().Dx())
	assert.Equal(t, previewMax, img.Bounds().Dy())
}

func TestPreviewEmptyFormStillRenders(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiPreview(rec, jsonRequest(t, "/api/preview", FormState{}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreviewFailureKeepsLastGood(t *testing.T) {
	s := newTestServer(t, nil)

	first := httptest.NewRecorder()
	s.apiPreview(first, jsonRequest(t, "/api/preview", FormState{Content: "HELLO"}))
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := jsonRequest(t, "/api/preview", FormState{Content: "HELLO", Dark: "#12"})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	second := httptest.NewRecorder()
	s.apiPreview(second, req)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "1", second.Header().Get("X-Preview-Stale"))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())

	// a fresh session has nothing to fall back to
	third := httptest.NewRecorder()
	s.apiPreview(third, jsonRequest(t, "/api/preview", FormState{Content: "HELLO", Dark: "#12"}))
	assert.Equal(t, http.StatusNoContent, third.Code)
	assert.Zero(t, third.Body.Len())
}

func TestSaveWritesUnderSaveDir(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	s := newTestServer(t, func(c *config.Config) { c.Web.AuditLog = auditPath })
	rec := httptest.NewRecorder()
	s.apiSave(rec, jsonRequest(t, "/api/save", FormState{Content: "HELLO", Out: "a/b/qr.png", Rounded: true}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeJSON(t, rec)
	want := filepath.Join(s.Config.Web.SaveDir, "a", "b", "qr.png")
	assert.Equal(t, want, out["path"])
	assert.Equal(t, "png", out["format"])
	_, err := os.Stat(want)
	assert.NoError(t, err)

	journal, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	assert.Contains(t, string(journal), `"action":"save"`)
	assert.Contains(t, string(journal), want)
}

func TestSaveWiFiContent(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiSave(rec, jsonRequest(t, "/api/save", FormState{SSID: " Home ", Password: "secret123", Security: "WPA", Out: "wifi.svg"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b, err := os.ReadFile(filepath.Join(s.Config.Web.SaveDir, "wifi.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")

	var text string
	text, err = FormState{SSID: " Home ", Password: "secret123", Security: "WPA"}.Text(false)
	require.NoError(t, err)
	assert.Equal(t, "WIFI:S:Home;T:WPA;P:secret123;;", text)
}

func TestSaveDownload(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiSave(rec, jsonRequest(t, "/api/save", FormState{Content: "HELLO", Format: "svg"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="qrcode.svg"`)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestSaveReportsErrors(t *testing.T) {
	s := newTestServer(t, nil)
	cases := map[string]FormState{
		"no content":   {},
		"bad color":    {Content: "x", Light: "#ggg000"},
		"bad security": {SSID: "Home", Security: "WPA9"},
		"bad logo":     {Content: "x", LogoID: "nope"},
		"too long":     {Content: strings.Repeat("9", 8000), Level: "H"},
	}
	for name, f := range cases {
		rec := httptest.NewRecorder()
		s.apiSave(rec, jsonRequest(t, "/api/save", f))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.NotEmpty(t, decodeJSON(t, rec)["error"], name)
	}

	rec := httptest.NewRecorder()
	s.apiSave(rec, jsonRequest(t, "/api/save", FormState{}))
	assert.Equal(t, ErrNoContent.Error(), decodeJSON(t, rec)["error"])
}

func TestSaveUnwritablePath(t *testing.T) {
	s := newTestServer(t, nil)
	blocker := filepath.Join(s.Config.Web.SaveDir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	rec := httptest.NewRecorder()
	s.apiSave(rec, jsonRequest(t, "/api/save", FormState{Content: "x", Out: "file/qr.png"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSaveStaysInsideSaveDir(t *testing.T) {
	root := t.TempDir()
	s := newTestServer(t, func(c *config.Config) { c.Web.SaveDir = filepath.Join(root, "saves") })
	victim := filepath.Join(root, "victim.png")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0644))

	for _, out := range []string{"../victim.png", "a/../../victim.png", victim, "/tmp/../" + victim} {
		rec := httptest.NewRecorder()
		s.apiSave(rec, jsonRequest(t, "/api/save", FormState{Content: "HELLO", Out: out}))
		assert.Equal(t, http.StatusBadRequest, rec.Code, out)
		assert.Contains(t, decodeJSON(t, rec)["error"], "save directory", out)
	}

	b, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(b))
	_, err = os.Stat(filepath.Join(root, "saves"))
	assert.True(t, os.IsNotExist(err))

	// dot segments that stay inside are fine
	rec := httptest.NewRecorder()
	s.apiSave(rec, jsonRequest(t, "/api/save", FormState{Content: "HELLO", Out: "a/../qr.png"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, filepath.Join(root, "saves", "qr.png"), decodeJSON(t, rec)["path"])
}

func TestFileUpload(t *testing.T) {
	s := newTestServer(t, nil)
	data := bytes.Repeat([]byte{0x01, 0xfe}, 300)
	rec := httptest.NewRecorder()
	s.apiFile(rec, multipartRequest(t, "/api/file", "file", "blob.bin", data))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeJSON(t, rec)
	assert.Equal(t, payload.Base64(data), out["content"])
	assert.Len(t, out["excerpt"], excerptLen+3)
	assert.EqualValues(t, len(data), out["size"])
}

func testLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 40))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], []byte{0xff, 0, 0, 0xff})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLogoUploadAndPreview(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiLogo(rec, multipartRequest(t, "/api/logo", "logo", "logo.png", testLogo(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id, _ := decodeJSON(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = httptest.NewRecorder()
	s.apiPreview(rec, jsonRequest(t, "/api/preview", FormState{Content: "HELLO", Level: "H", LogoID: id}))
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	c := color.RGBAModel.Convert(img.At(145, 145)).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, c)

	rec = httptest.NewRecorder()
	s.apiLogo(rec, multipartRequest(t, "/api/logo", "logo", "logo.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPITOTP(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.apiTOTP(rec, jsonRequest(t, "/api/totp", map[string]string{"issuer": "qrforge", "account": "alice"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeJSON(t, rec)
	assert.True(t, strings.HasPrefix(out["content"].(string), "otpauth://totp/"))
	assert.NotEmpty(t, out["secret"])
}

func TestRouterServesFormWithoutAuth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csrf-token"`)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsPostWithoutCSRF(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, jsonRequest(t, "/api/preview", FormState{Content: "x"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	secret := "JBSWY3DPEHPK3PXP"
	s := newTestServer(t, func(c *config.Config) {
		c.Web.PasswordBcrypt = string(hash)
		c.Web.TOTPSecret = secret
	})
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="totp"`)

	login := func(password, code string) *httptest.ResponseRecorder {
		form := strings.NewReader("username=admin&password=" + password + "&totp=" + code)
		req := httptest.NewRequest(http.MethodPost, "/login", form)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.loginPost(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, login("wrong", "").Code)
	assert.Equal(t, http.StatusUnauthorized, login("hunter22", "000000x").Code)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	ok := login("hunter22", code)
	require.Equal(t, http.StatusFound, ok.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range ok.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/logout")
}

func TestRequireLoginAPI(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	s := newTestServer(t, func(c *config.Config) { c.Web.PasswordBcrypt = string(hash) })

	called := false
	h := s.requireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest(t, "/api/preview", FormState{}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestPreviewCacheBounded(t *testing.T) {
	c := newPreviewCache(2)
	c.put("a", []byte("1"))
	c.put("b", []byte("2"))
	c.put("c", []byte("3"))
	assert.Len(t, c.items, 2)
	got, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), got)
	c.put("c", []byte("4"))
	assert.Len(t, c.items, 2)
}

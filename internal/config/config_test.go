package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzeguitarist/qrforge/internal/render"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 10, cfg.Render.ModuleSize)
	assert.Equal(t, "M", cfg.Render.Error)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := writeYAML(t, `
render:
  dark: "#112233"
  border: 2
  rounded: true
web:
  listen: 0.0.0.0:8080
`)
	cfg, err := LoadWithEnv(path, map[string]string{
		"QRFORGE_RENDER_BORDER": "6",
		"QRFORGE_LOG_LEVEL":     "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "#112233", cfg.Render.Dark)
	assert.Equal(t, "#FFFFFF", cfg.Render.Light, "unset keys keep their defaults")
	assert.True(t, cfg.Render.Rounded)
	assert.Equal(t, 6, cfg.Render.Border, "environment beats the file")
	assert.Equal(t, "0.0.0.0:8080", cfg.Web.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)

	req := cfg.Render.Request()
	st, err := req.Style()
	require.NoError(t, err)
	assert.Equal(t, render.ShapeRounded, st.Shape)
	assert.Equal(t, 6, st.Border)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"color":  "render:\n  dark: black\n",
		"level":  "render:\n  error: X\n",
		"kind":   "render:\n  kind: gif\n",
		"size":   "render:\n  moduleSize: 0\n",
		"listen": "web:\n  listen: nope\n",
		"bcrypt": "web:\n  passwordBcrypt: plain\n",
		"tls":    "web:\n  tlsCert: cert.pem\n",
		"log":    "log:\n  level: loud\n",
		"format": "log:\n  format: xml\n",
	}
	for name, body := range cases {
		_, err := LoadWithEnv(writeYAML(t, body), map[string]string{})
		assert.Error(t, err, name)
	}
}

func TestLoadBadYAML(t *testing.T) {
	_, err := LoadWithEnv(writeYAML(t, "render: [unclosed"), map[string]string{})
	assert.ErrorContains(t, err, "parse")
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Render.Dark = "#abcdef"
	require.NoError(t, cfg.WriteFile(path, false))
	assert.Error(t, cfg.WriteFile(path, false))
	require.NoError(t, cfg.WriteFile(path, true))

	back, err := LoadWithEnv(path, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

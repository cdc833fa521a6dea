package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/render"
	"github.com/yuzeguitarist/qrforge/internal/service"
)

// previewMax bounds the preview image on both axes.
const previewMax = 300

// previewCache keeps the last successful preview per session so a failed
// render can fall back to it.
type previewCache struct {
	mu    sync.Mutex
	limit int
	items map[string][]byte
}

func newPreviewCache(limit int) *previewCache {
	return &previewCache{limit: limit, items: map[string][]byte{}}
}

func (c *previewCache) get(sid string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[sid]
	return b, ok
}

func (c *previewCache) put(sid string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[sid]; !ok && len(c.items) >= c.limit {
		for k := range c.items {
			delete(c.items, k)
			break
		}
	}
	c.items[sid] = b
}

// sessionID returns the browser's session id, creating one if needed. It
// must run before anything is written to w.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	sess, _ := s.Store.Get(r, sessionName)
	if id, ok := sess.Values["sid"].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	sess.Values["sid"] = id
	if err := sess.Save(r, w); err != nil {
		s.Log.Warn("save session", logger.Error(err))
	}
	return id
}

func decodeForm(r *http.Request) (FormState, error) {
	var f FormState
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&f); err != nil {
		return f, fmt.Errorf("bad form: %w", err)
	}
	return f, nil
}

// apiPreview renders the form as a PNG thumbnail. A failed render is not an
// error for the user: the last good preview of the session is sent back
// marked stale, or 204 when there is none yet.
func (s *Server) apiPreview(w http.ResponseWriter, r *http.Request) {
	f, err := decodeForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sid := s.sessionID(w, r)
	b, err := s.renderPreview(f)
	if err != nil {
		s.Log.Debug("preview failed", logger.Error(err), logger.RequestID(requestID(r)))
		last, ok := s.previews.get(sid)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("X-Preview-Stale", "1")
		writeImage(w, "image/png", last)
		return
	}
	s.previews.put(sid, b)
	writeImage(w, "image/png", b)
}

func (s *Server) renderPreview(f FormState) ([]byte, error) {
	req, err := f.Request(s.Config.Render.Request(), true, s.logos)
	if err != nil {
		return nil, err
	}
	req.Out = ""
	req.Kind = string(render.FormatPNG)
	res, err := service.Create(req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumbnail(res.Artifact.Image, previewMax)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// thumbnail shrinks img to fit limit×limit, keeping the aspect ratio.
func thumbnail(img *image.RGBA, limit int) image.Image {
	b := img.Bounds()
	w, h := render.FitLogo(b.Dx(), b.Dy(), limit)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// apiSave writes the artifact under the configured save directory, or
// sends it as a download when no output path is given. Unlike previews,
// every failure is reported.
func (s *Server) apiSave(w http.ResponseWriter, r *http.Request) {
	f, err := decodeForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := f.Request(s.Config.Render.Request(), false, s.logos)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if req.Out, err = s.savePath(req.Out); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res, err := service.Create(req)
	if err != nil {
		s.Log.Info("save failed", logger.Error(err), logger.Path(req.Out), logger.RequestID(requestID(r)))
		writeError(w, statusFor(err), err)
		return
	}
	art := res.Artifact
	if res.Path != "" {
		s.Log.Info("saved", logger.Path(res.Path), logger.Format(string(art.Format)), logger.ClientIP(clientIP(r)))
		s.audit(r, "", "save", res.Path, string(art.Format))
		writeJSON(w, map[string]any{"ok": true, "path": res.Path, "format": art.Format})
		return
	}
	var buf bytes.Buffer
	if err := render.Encode(&buf, art); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("content-disposition", `attachment; filename="qrcode`+art.Format.Ext()+`"`)
	writeImage(w, art.Format.ContentType(), buf.Bytes())
}

// savePath places out under the save directory. Absolute paths and paths
// that climb out of it are refused; empty stays empty (download).
func (s *Server) savePath(out string) (string, error) {
	if out == "" {
		return "", nil
	}
	clean := filepath.Clean(out)
	if filepath.IsAbs(clean) || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", ErrOutsideSaveDir, out)
	}
	return filepath.Join(s.Config.Web.SaveDir, clean), nil
}

func writeImage(w http.ResponseWriter, contentType string, b []byte) {
	w.Header().Set("content-type", contentType)
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(b)
}

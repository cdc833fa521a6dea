package web

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/payload"
)

var errUnknownLogo = errors.New("unknown logo id; upload it again")

// excerptLen is how much of a loaded file's base64 text is echoed back.
const excerptLen = 200

// logoStore keeps uploaded logos on disk for the lifetime of the server,
// addressed by a random id.
type logoStore struct {
	mu    sync.Mutex
	dir   string
	paths map[string]string
}

func newLogoStore() (*logoStore, error) {
	dir, err := os.MkdirTemp("", app.Name+"-logos-")
	if err != nil {
		return nil, err
	}
	if err := app.EnsureDir(dir, 0700); err != nil {
		return nil, err
	}
	return &logoStore{dir: dir, paths: map[string]string{}}, nil
}

func (s *logoStore) save(data []byte) (string, error) {
	id := uuid.NewString()
	path := filepath.Join(s.dir, id)
	if err := app.AtomicWriteFile(path, 0600, data); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.paths[id] = path
	s.mu.Unlock()
	return id, nil
}

func (s *logoStore) path(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.paths[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownLogo, id)
	}
	return p, nil
}

func (s *logoStore) close() error { return os.RemoveAll(s.dir) }

// readUpload returns the bytes of the multipart field name.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<16)
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return nil, "", err
	}
	if len(b) > maxUpload {
		return nil, "", fmt.Errorf("file larger than %d bytes", maxUpload)
	}
	return b, hdr.Filename, nil
}

// apiFile turns an uploaded file into base64 content for the form.
func (s *Server) apiFile(w http.ResponseWriter, r *http.Request) {
	b, name, err := readUpload(w, r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	content := payload.Base64(b)
	writeJSON(w, map[string]any{
		"name":    name,
		"size":    len(b),
		"content": content,
		"excerpt": payload.Excerpt(content, excerptLen),
	})
}

// apiLogo stores an uploaded logo after checking that it decodes.
func (s *Server) apiLogo(w http.ResponseWriter, r *http.Request) {
	b, name, err := readUpload(w, r, "logo")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s: not a supported image: %w", name, err))
		return
	}
	id, err := s.logos.save(b)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.Log.Debug("logo uploaded", logger.Format(format), logger.Path(name))
	writeJSON(w, map[string]any{"id": id, "name": name})
}

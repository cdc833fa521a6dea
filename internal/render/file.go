package render

import (
	"bytes"
	"fmt"

	"github.com/yuzeguitarist/qrforge/internal/app"
)

// IOError reports a failed read or write of a logo or output file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// WriteFile encodes a and writes it to path, creating missing parent
// directories. The file appears only once fully written.
func WriteFile(path string, a *Artifact) error {
	var buf bytes.Buffer
	if err := Encode(&buf, a); err != nil {
		return fmt.Errorf("encode %s: %w", a.Format, err)
	}
	if err := app.EnsureParentDir(path); err != nil {
		return &IOError{Op: "create directory for", Path: path, Err: err}
	}
	if err := app.AtomicWriteFile(path, 0644, buf.Bytes()); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

package render

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatSVG  Format = "svg"
)

// jpegQuality matches the baseline default of common imaging libraries.
const jpegQuality = 75

// ParseFormat maps a user-supplied kind ("png", "JPG", "svg", ...) to a Format.
func ParseFormat(kind string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(kind), ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, kind)
}

// FormatFromPath picks the format from the extension of path when it is a
// known one, otherwise from kind.
func FormatFromPath(path, kind string) (Format, error) {
	if ext := filepath.Ext(path); ext != "" {
		if f, err := ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return ParseFormat(kind)
}

func (f Format) Validate() error {
	switch f {
	case FormatPNG, FormatJPEG, FormatBMP, FormatSVG:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// ContentType is the MIME type of the encoded format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Ext is the canonical file extension, with the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Encode writes the artifact in its format.
func Encode(w io.Writer, a *Artifact) error {
	if a.IsVector() {
		_, err := w.Write(a.SVG)
		return err
	}
	switch a.Format {
	case FormatPNG:
		return png.Encode(w, a.Image)
	case FormatJPEG:
		return jpeg.Encode(w, a.Image, &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		return bmp.Encode(w, a.Image)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(a.Format))
}

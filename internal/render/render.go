// Package render paints a QR module matrix as a raster image or an SVG
// document.
package render

import "image"

// Grid is a square module matrix; Dark reports whether a module is set.
type Grid interface {
	Size() int
	Dark(row, col int) bool
}

// Artifact is the output of one render call. Exactly one of Image and SVG
// is set, depending on Format.
type Artifact struct {
	Format Format
	Image  *image.RGBA
	SVG    []byte
}

// IsVector reports whether the artifact is an SVG document.
func (a *Artifact) IsVector() bool { return a.Format == FormatSVG }

// Render validates st and produces the artifact for format f. The logo in
// st is ignored on the vector path.
func Render(m Grid, st Style, f Format) (*Artifact, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f == FormatSVG {
		return &Artifact{Format: f, SVG: Vector(m, st)}, nil
	}
	return &Artifact{Format: f, Image: Raster(m, st)}, nil
}

// Package service is the render call: one immutable Request in, one
// artifact (and optionally a written file) out.
package service

import (
	"fmt"

	"github.com/yuzeguitarist/qrforge/internal/qr"
	"github.com/yuzeguitarist/qrforge/internal/render"
)

// Request is built fresh from the caller's current inputs for every
// preview or save. It is passed by value and never modified.
type Request struct {
	Text       string
	Out        string // empty: return the artifact without writing
	Kind       string // png, jpg, bmp or svg; an extension on Out wins
	Scale      int    // vector px per module
	ModuleSize int    // raster px per module
	Border     int    // quiet zone in modules
	Level      string // L, M, Q or H
	Dark       string // #rrggbb
	Light      string // #rrggbb
	Rounded    bool
	Logo       string  // path; raster only
	LogoScale  float64 // (0,1)
}

func DefaultRequest() Request {
	return Request{
		Kind:       string(render.FormatPNG),
		Scale:      render.DefaultScale,
		ModuleSize: render.DefaultModuleSize,
		Border:     render.DefaultBorder,
		Level:      qr.LevelM.String(),
		Dark:       "#000000",
		Light:      "#FFFFFF",
		LogoScale:  render.DefaultLogoScale,
	}
}

// Result of Create. Path is set only when a file was written.
type Result struct {
	Artifact *render.Artifact
	Matrix   *qr.Matrix
	Path     string
}

// Style validates the request's style fields. Colors are checked first.
func (r Request) Style() (render.Style, error) {
	st, err := render.NewStyle(r.Dark, r.Light)
	if err != nil {
		return st, err
	}
	st.Scale = r.Scale
	st.ModuleSize = r.ModuleSize
	st.Border = r.Border
	st.LogoScale = r.LogoScale
	if r.Rounded {
		st.Shape = render.ShapeRounded
	}
	return st, st.Validate()
}

// Format is the output format the request resolves to.
func (r Request) Format() (render.Format, error) {
	return render.FormatFromPath(r.Out, r.Kind)
}

// Create renders req and, when req.Out is set, writes the result there.
// Nothing is written unless every step before it succeeded.
func Create(req Request) (*Result, error) {
	st, err := req.Style()
	if err != nil {
		return nil, err
	}
	format, err := req.Format()
	if err != nil {
		return nil, err
	}
	level, err := qr.ParseLevel(req.Level)
	if err != nil {
		return nil, err
	}
	m, err := qr.Encode(req.Text, level)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if req.Logo != "" && format != render.FormatSVG {
		if st.Logo, err = render.LoadLogo(req.Logo); err != nil {
			return nil, err
		}
	}
	art, err := render.Render(m, st, format)
	if err != nil {
		return nil, err
	}
	res := &Result{Artifact: art, Matrix: m}
	if req.Out != "" {
		if err := render.WriteFile(req.Out, art); err != nil {
			return nil, err
		}
		res.Path = req.Out
	}
	return res, nil
}

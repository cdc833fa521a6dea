package render

import (
	"image"

	"golang.org/x/image/draw"
)

// roundedInset is the gap between a rounded module and its cell edge, as a
// fraction of the module size.
const roundedInset = 0.1

// Raster paints m onto a light canvas of Style.CanvasSize pixels per side.
// The style is assumed valid.
func Raster(m Grid, st Style) *image.RGBA {
	n := m.Size()
	px := st.CanvasSize(n)
	img := image.NewRGBA(image.Rect(0, 0, px, px))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: st.Light}, image.Point{}, draw.Src)

	dark := &image.Uniform{C: st.Dark}
	var dot *image.Alpha
	if st.Shape == ShapeRounded {
		dot = circleMask(st.ModuleSize)
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if !m.Dark(r, c) {
				continue
			}
			x := (c + st.Border) * st.ModuleSize
			y := (r + st.Border) * st.ModuleSize
			cell := image.Rect(x, y, x+st.ModuleSize, y+st.ModuleSize)
			if dot != nil {
				draw.DrawMask(img, cell, dark, image.Point{}, dot, image.Point{}, draw.Over)
			} else {
				draw.Draw(img, cell, dark, image.Point{}, draw.Src)
			}
		}
	}

	if st.Logo != nil {
		lo := st.Border * st.ModuleSize
		hi := (st.Border + n) * st.ModuleSize
		inner := img.SubImage(image.Rect(lo, lo, hi, hi)).(*image.RGBA)
		compositeLogo(inner, px, px, st)
	}
	return img
}

package render

import (
	"image"

	"github.com/fogleman/gg"
)

// shapeMask fills the path built by trace on a w×h canvas and returns it
// as a mask. Coverage is cut at one half so every pixel is fully on or
// off and output stays reproducible.
func shapeMask(w, h int, trace func(dc *gg.Context)) *image.Alpha {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(canvas)
	dc.SetRGB(1, 1, 1)
	trace(dc)
	dc.Fill()

	mask := image.NewAlpha(canvas.Bounds())
	for i := range mask.Pix {
		if canvas.Pix[i*4+3] >= 0x80 {
			mask.Pix[i] = 0xff
		}
	}
	return mask
}

// circleMask is the circle inscribed in a size×size cell, inset by
// roundedInset of the cell size.
func circleMask(size int) *image.Alpha {
	center := float64(size) / 2
	radius := center - float64(size)*roundedInset
	return shapeMask(size, size, func(dc *gg.Context) {
		dc.DrawCircle(center, center, radius)
	})
}

// roundedRectMask is an opaque w×h rounded rectangle with corner radius r,
// clamped to half the shorter side.
func roundedRectMask(w, h, r int) *image.Alpha {
	rad := float64(min(r, w/2, h/2))
	return shapeMask(w, h, func(dc *gg.Context) {
		dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), rad)
	})
}

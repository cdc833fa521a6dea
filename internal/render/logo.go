package render

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// logoPadding is the plate margin around the logo, relative to the
	// logo's shorter side.
	logoPadding = 0.18
	// plateCornerExtra is added to the padding to get the plate corner radius.
	plateCornerExtra = 4
)

// LoadLogo decodes the image at path. Any failure is an *IOError.
func LoadLogo(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read logo", Path: path, Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, &IOError{Op: "decode logo", Path: path, Err: err}
	}
	return img, nil
}

// FitLogo returns the logo size after shrinking w×h to fit a limit×limit
// square. Images already inside the square keep their size.
func FitLogo(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, int(math.Round(float64(h)*float64(limit)/float64(w))))
	}
	return max(1, int(math.Round(float64(w)*float64(limit)/float64(h)))), limit
}

// LogoLimit is the largest logo side allowed on a w×h canvas.
func LogoLimit(w, h int, scale float64) int {
	return int(scale * float64(min(w, h)))
}

// compositeLogo draws the backing plate and the logo centered on a w×h
// canvas. dst is the writable region; anything outside it is clipped.
func compositeLogo(dst draw.Image, w, h int, st Style) {
	limit := LogoLimit(w, h, st.LogoScale)
	if limit < 1 {
		return
	}
	src := st.Logo.Bounds()
	lw, lh := FitLogo(src.Dx(), src.Dy(), limit)
	logo := image.NewRGBA(image.Rect(0, 0, lw, lh))
	if lw == src.Dx() && lh == src.Dy() {
		draw.Draw(logo, logo.Bounds(), st.Logo, src.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(logo, logo.Bounds(), st.Logo, src, draw.Src, nil)
	}

	lx := (w - lw) / 2
	ly := (h - lh) / 2
	pad := int(float64(min(lw, lh)) * logoPadding)
	plate := image.Rect(lx-pad, ly-pad, lx+lw+pad, ly+lh+pad)
	mask := roundedRectMask(plate.Dx(), plate.Dy(), pad+plateCornerExtra)
	draw.DrawMask(dst, plate, &image.Uniform{C: st.Light}, image.Point{}, mask, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(lx, ly, lx+lw, ly+lh), logo, image.Point{}, draw.Over)
}

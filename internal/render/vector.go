package render

import (
	"bytes"
	"fmt"
)

// Vector emits an SVG document: a light background covering the whole
// symbol plus quiet zone, and one filled rectangle per horizontal run of
// dark modules. Coordinates are in modules; width and height carry the
// pixel scale. Style.Logo is not used here.
func Vector(m Grid, st Style) []byte {
	n := m.Size()
	side := n + 2*st.Border
	px := side * st.Scale

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, px, px, side, side)
	fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill="%s"/>`, side, side, HexColor(st.Light))
	fmt.Fprintf(&buf, `<g fill="%s">`, HexColor(st.Dark))
	for r := 0; r < n; r++ {
		for c := 0; c < n; {
			if !m.Dark(r, c) {
				c++
				continue
			}
			start := c
			for c < n && m.Dark(r, c) {
				c++
			}
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="1"/>`, start+st.Border, r+st.Border, c-start)
		}
	}
	buf.WriteString(`</g></svg>` + "\n")
	return buf.Bytes()
}

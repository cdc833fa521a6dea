package render

import (
	"bufio"
	"io"
)

// Terminal prints m using half-block characters, two module rows per text
// line, with border light modules on every side.
func Terminal(w io.Writer, m Grid, border int) error {
	n := m.Size()
	side := n + 2*border
	dark := func(r, c int) bool {
		r, c = r-border, c-border
		return r >= 0 && c >= 0 && r < n && c < n && m.Dark(r, c)
	}
	bw := bufio.NewWriter(w)
	for r := 0; r < side; r += 2 {
		for c := 0; c < side; c++ {
			top, bottom := dark(r, c), dark(r+1, c)
			switch {
			case top && bottom:
				bw.WriteRune('█')
			case top:
				bw.WriteRune('▀')
			case bottom:
				bw.WriteRune('▄')
			default:
				bw.WriteRune(' ')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

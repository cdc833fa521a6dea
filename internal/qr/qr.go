// Package qr turns text into a module matrix. Error-correction coding is
// delegated to github.com/skip2/go-qrcode; the quiet zone is left to the
// renderer.
package qr

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	ErrCapacity     = errors.New("qr: content exceeds symbol capacity")
	ErrInvalidLevel = errors.New("qr: invalid error-correction level")
	ErrNotSquare    = errors.New("qr: matrix is not square")
)

// Level is an error-correction tier.
type Level int

const (
	LevelL Level = iota
	LevelM
	LevelQ
	LevelH
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelL, nil
	case "", "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return LevelM, fmt.Errorf("%w: %q (want L, M, Q or H)", ErrInvalidLevel, s)
}

func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	default:
		return "M"
	}
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return qrcode.Low
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Matrix is an immutable square grid of modules; true means dark.
type Matrix struct {
	modules [][]bool
	version int
}

// NewMatrix copies rows into a Matrix. Rows must form a non-empty square.
func NewMatrix(rows [][]bool) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty", ErrNotSquare)
	}
	cp := make([][]bool, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNotSquare, i, len(row), n)
		}
		cp[i] = append([]bool(nil), row...)
	}
	return &Matrix{modules: cp}, nil
}

// Encode builds the symbol for text at the given level.
func Encode(text string, level Level) (*Matrix, error) {
	code, err := qrcode.New(text, level.recovery())
	if err != nil {
		if strings.Contains(err.Error(), "too long") {
			return nil, capacityError{err: err}
		}
		return nil, err
	}
	code.DisableBorder = true
	m, err := NewMatrix(code.Bitmap())
	if err != nil {
		return nil, err
	}
	m.version = code.VersionNumber
	return m, nil
}

func (m *Matrix) Size() int { return len(m.modules) }

func (m *Matrix) Dark(row, col int) bool { return m.modules[row][col] }

// Version is the symbol version chosen by the encoder, 0 when the matrix
// was not produced by Encode.
func (m *Matrix) Version() int { return m.version }

// capacityError keeps the encoder's message while matching ErrCapacity.
type capacityError struct{ err error }

func (e capacityError) Error() string   { return e.err.Error() }
func (e capacityError) Unwrap() []error { return []error{e.err, ErrCapacity} }

package vector

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mask is a dense row-major boolean visibility matrix. True means
// attention is permitted at that position, false means it is suppressed.
// A padding mask is a single row; a causal mask is square.
type Mask struct {
	rows int
	cols int
	data []bool
}

func newMask(rows, cols int) *Mask {
	return &Mask{
		rows: rows,
		cols: cols,
		data: make([]bool, rows*cols),
	}
}

// CausalMask returns a size×size mask where entry (i, j) is true iff
// j <= i: a position may attend to itself and earlier positions, never
// later ones.
func CausalMask(size int) (*Mask, error) {
	if size < 1 {
		return nil, fmt.Errorf("vector: causal mask size must be positive, got %d", size)
	}

	m := newMask(size, size)
	for i := 0; i < size; i++ {
		row := i * size
		for j := 0; j <= i; j++ {
			m.data[row+j] = true
		}
	}

	return m, nil
}

// PadMask returns a 1×len(vec) row that is true wherever vec differs
// from pad, marking real tokens versus filler padding.
func PadMask(vec []int64, pad int64) *Mask {
	m := newMask(1, len(vec))
	for j, idx := range vec {
		m.data[j] = idx != pad
	}

	return m
}

// And returns the elementwise conjunction of m and other. A single-row
// mask broadcasts across the rows of a multi-row mask of equal width;
// any other shape difference is an error. The result is true only where
// both operands are true.
func (m *Mask) And(other *Mask) (*Mask, error) {
	if m == nil || other == nil {
		return nil, errors.New("vector: mask conjunction requires non-nil masks")
	}

	if m.cols != other.cols {
		return nil, fmt.Errorf("vector: mask widths %d and %d differ", m.cols, other.cols)
	}

	if m.rows != other.rows && m.rows != 1 && other.rows != 1 {
		return nil, fmt.Errorf("vector: mask shapes %dx%d and %dx%d do not broadcast", m.rows, m.cols, other.rows, other.cols)
	}

	rows := m.rows
	if other.rows > rows {
		rows = other.rows
	}

	out := newMask(rows, m.cols)

	for i := 0; i < rows; i++ {
		mi := i
		if m.rows == 1 {
			mi = 0
		}

		oi := i
		if other.rows == 1 {
			oi = 0
		}

		for j := 0; j < m.cols; j++ {
			out.data[i*m.cols+j] = m.data[mi*m.cols+j] && other.data[oi*m.cols+j]
		}
	}

	return out, nil
}

// At returns the entry at (row, col).
func (m *Mask) At(row, col int) bool {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("vector: mask index (%d, %d) out of range for %dx%d", row, col, m.rows, m.cols))
	}

	return m.data[row*m.cols+col]
}

// Rows returns the number of rows.
func (m *Mask) Rows() int {
	if m == nil {
		return 0
	}

	return m.rows
}

// Cols returns the number of columns.
func (m *Mask) Cols() int {
	if m == nil {
		return 0
	}

	return m.cols
}

// Bools returns the mask as freshly allocated nested rows.
func (m *Mask) Bools() [][]bool {
	if m == nil {
		return nil
	}

	out := make([][]bool, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = append([]bool(nil), m.data[i*m.cols:(i+1)*m.cols]...)
	}

	return out
}

// Equal reports whether m and other have the same shape and entries.
func (m *Mask) Equal(other *Mask) bool {
	if m == nil || other == nil {
		return m == other
	}

	if m.rows != other.rows || m.cols != other.cols {
		return false
	}

	for i, v := range m.data {
		if v != other.data[i] {
			return false
		}
	}

	return true
}

// MarshalJSON encodes the mask as nested boolean rows.
func (m *Mask) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Bools())
}

// UnmarshalJSON decodes nested boolean rows into the mask. All rows must
// have the same width and at least one row is required.
func (m *Mask) UnmarshalJSON(data []byte) error {
	var rows [][]bool

	err := json.Unmarshal(data, &rows)
	if err != nil {
		return fmt.Errorf("vector: decode mask: %w", err)
	}

	if len(rows) == 0 {
		return errors.New("vector: mask must have at least one row")
	}

	cols := len(rows[0])
	flat := make([]bool, 0, len(rows)*cols)

	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("vector: mask row %d has %d entries, want %d", i, len(row), cols)
		}

		flat = append(flat, row...)
	}

	m.rows = len(rows)
	m.cols = cols
	m.data = flat

	return nil
}

// Package matrix manages small integer matrices, such as the structure
// constants of the bracket algebra.
package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadCell is returned (wrapped) when a row, col pair is outside the
// matrix.
var ErrBadCell = errors.New("bad cell")

type Matrix struct {
	// row count and col count
	rows, cols int
	// The matrix elements arranged, [r=0,c=0], [0,1], [0,2] ...
	data []int
}

// NewMatrix creates a rows x cols matrix of zeros.
func NewMatrix(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("need positive dimensions, not %dx%d", rows, cols)
	}
	m := &Matrix{
		rows: rows,
		cols: cols,
		data: make([]int, rows*cols),
	}
	return m, nil
}

// FromRows builds a matrix from equal length rows.
func FromRows(rows ...[]int) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("need at least one row")
	}
	m, err := NewMatrix(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", r, len(row), m.cols)
		}
		copy(m.data[r*m.cols:], row)
	}
	return m, nil
}

// Dims returns the row and column counts.
func (m *Matrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// String serializes a matrix for displaying.
func (m *Matrix) String() string {
	var rs []string
	for r := 0; r < m.rows; r++ {
		var cs []string
		for c := 0; c < m.cols; c++ {
			cs = append(cs, fmt.Sprint(m.data[c+m.cols*r]))
		}
		rs = append(rs, "["+strings.Join(cs, ", ")+"]")
	}
	return "[" + strings.Join(rs, ", ") + "]"
}

// Set sets the value of a matrix element.
func (m *Matrix) Set(row, col int, e int) error {
	if row < 0 || col < 0 || row >= m.rows || col >= m.cols {
		return fmt.Errorf("%w: [%d,%d] in %dx%d matrix", ErrBadCell, row, col, m.rows, m.cols)
	}
	m.data[col+m.cols*row] = e
	return nil
}

// El returns the row,col element of the matrix.
func (m *Matrix) El(row, col int) int {
	return m.data[col+m.cols*row]
}

// Lookup returns the element at the 1-based position (row, col),
// the indexing used by C(row, col) in expressions.
func (m *Matrix) Lookup(row, col int) (int, error) {
	if row < 1 || col < 1 || row > m.rows || col > m.cols {
		return 0, fmt.Errorf("%w: C(%d, %d) in %dx%d table", ErrBadCell, row, col, m.rows, m.cols)
	}
	return m.El(row-1, col-1), nil
}

// constants holds the structure constants of the algebra. The diagonal
// is 2 and C(2, 3) = -2 is the single entry without a mirror image.
var constants = mustRows(
	[]int{2, -1, -1},
	[]int{-1, 2, -2},
	[]int{-1, -1, 2},
)

// C returns the structure constant at the 1-based position (row, col).
func C(row, col int) (int, error) {
	return constants.Lookup(row, col)
}

// Constants returns a copy of the structure constant table.
func Constants() *Matrix {
	m, _ := NewMatrix(constants.rows, constants.cols)
	copy(m.data, constants.data)
	return m
}

func mustRows(rows ...[]int) *Matrix {
	m, err := FromRows(rows...)
	if err != nil {
		panic(err)
	}
	return m
}

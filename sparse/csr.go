// Package sparse implements the compressed sparse row matrices the engine
// consumes on its sparse input path. Values are single precision, matching
// the width everything is funneled through before it reaches the engine.
package sparse

import (
	"fmt"
	"slices"
)

type CSR struct {
	rows, cols int

	// rowptr has rows+1 entries; row i's nonzeroes live in
	// colind[rowptr[i]:rowptr[i+1]] and data at the same offsets.
	rowptr []int
	colind []int
	data   []float32
}

func New(rows, cols int, rowptr, colind []int, data []float32) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid dimensions (%d, %d)", rows, cols)
	}

	if len(rowptr) != rows+1 {
		return nil, fmt.Errorf("row index has %d entries, want %d", len(rowptr), rows+1)
	}

	if rowptr[0] != 0 || rowptr[rows] != len(colind) || len(colind) != len(data) {
		return nil, fmt.Errorf("row index does not cover %d nonzeroes", len(data))
	}

	for i := 0; i < rows; i++ {
		if rowptr[i] > rowptr[i+1] {
			return nil, fmt.Errorf("row index decreases at row %d", i)
		}
	}

	for _, j := range colind {
		if j < 0 || j >= cols {
			return nil, fmt.Errorf("column %d out of range [0, %d)", j, cols)
		}
	}

	return &CSR{rows: rows, cols: cols, rowptr: rowptr, colind: colind, data: data}, nil
}

// FromDense builds a CSR matrix from row-major dense values, keeping only
// the nonzeroes.
func FromDense(data []float32, rows, cols int) (*CSR, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%d values cannot fill a (%d, %d) matrix", len(data), rows, cols)
	}

	rowptr := make([]int, rows+1)
	var colind []int
	var vals []float32
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := data[i*cols+j]; v != 0 {
				colind = append(colind, j)
				vals = append(vals, v)
			}
		}

		rowptr[i+1] = len(colind)
	}

	return &CSR{rows: rows, cols: cols, rowptr: rowptr, colind: colind, data: vals}, nil
}

// OneHotRows builds a (len(indices), cols) matrix with a single 1 per row at
// the given column.
func OneHotRows(indices []int, cols int) (*CSR, error) {
	if cols < 1 {
		return nil, fmt.Errorf("invalid vocabulary size %d", cols)
	}

	rowptr := make([]int, len(indices)+1)
	colind := make([]int, len(indices))
	data := make([]float32, len(indices))
	for i, ix := range indices {
		if ix < 0 || ix >= cols {
			return nil, fmt.Errorf("index %d out of range [0, %d)", ix, cols)
		}

		rowptr[i+1] = i + 1
		colind[i] = ix
		data[i] = 1
	}

	return &CSR{rows: len(indices), cols: cols, rowptr: rowptr, colind: colind, data: data}, nil
}

func (m *CSR) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored nonzeroes.
func (m *CSR) NNZ() int {
	return len(m.data)
}

func (m *CSR) At(i, j int) float32 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("index (%d, %d) out of range (%d, %d)", i, j, m.rows, m.cols))
	}

	for n := m.rowptr[i]; n < m.rowptr[i+1]; n++ {
		if m.colind[n] == j {
			return m.data[n]
		}
	}

	return 0
}

// Dense reconstructs the row-major dense values.
func (m *CSR) Dense() []float32 {
	out := make([]float32, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		for n := m.rowptr[i]; n < m.rowptr[i+1]; n++ {
			out[i*m.cols+m.colind[n]] = m.data[n]
		}
	}

	return out
}

func (m *CSR) Clone() *CSR {
	return &CSR{
		rows:   m.rows,
		cols:   m.cols,
		rowptr: slices.Clone(m.rowptr),
		colind: slices.Clone(m.colind),
		data:   slices.Clone(m.data),
	}
}

func (m *CSR) Equal(o *CSR) bool {
	return m.rows == o.rows && m.cols == o.cols &&
		slices.Equal(m.rowptr, o.rowptr) &&
		slices.Equal(m.colind, o.colind) &&
		slices.Equal(m.data, o.data)
}

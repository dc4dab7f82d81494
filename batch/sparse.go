package batch

import (
	"fmt"
	"log/slog"

	"github.com/batchkit/batchkit/dtype"
	"github.com/batchkit/batchkit/sparse"
	"github.com/batchkit/batchkit/types/errtypes"
	"github.com/batchkit/batchkit/value"
)

// PackSparse converts a batch of sparse matrices into a sparse value. Each
// matrix is one sequence: its rows are the samples, its column count the
// sample dimension. No padding is materialized; every sequence keeps its own
// row count. A single matrix wrapped in a one-element batch is one sequence
// of row samples.
func PackSparse(v *Variable, seqs []*sparse.CSR) (*value.Value, error) {
	if !v.IsSparse {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "variable is not declared sparse"}
	}

	if len(seqs) == 0 {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "empty batch"}
	}

	dim, err := vectorDim(v.Shape)
	if err != nil {
		return nil, err
	}

	groups := make([][]*sparse.CSR, len(seqs))
	for i, m := range seqs {
		rows, cols := m.Dims()
		if cols != dim {
			// a transposed matrix lands here; it is never silently fixed up
			return nil, &errtypes.ShapeMismatchError{Op: "pack_sparse", Want: []int{rows, dim}, Got: []int{rows, cols}}
		}

		groups[i] = []*sparse.CSR{m}
	}

	resolved := packDType(dtype.Resolve([]dtype.DataType{v.DType}, []dtype.DataType{dtype.Float32}))

	slog.Debug("packed sparse batch", "sequences", len(seqs), "dim", dim, "dtype", resolved)

	return value.NewSparse(resolved, groups, []int{dim}), nil
}

// PackSparseSamples converts a batch whose samples are whole sparse
// matrices. Every sample must match the declared (rows, cols) shape exactly.
// The extra nesting is reproduced faithfully: a batch of single-matrix
// sequences has shape (N, 1, rows, cols).
func PackSparseSamples(v *Variable, seqs [][]*sparse.CSR) (*value.Value, error) {
	if !v.IsSparse {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "variable is not declared sparse"}
	}

	if len(v.Shape) != 2 {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "matrix samples need a rank-2 declared shape"}
	}

	if len(seqs) == 0 {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "empty batch"}
	}

	for _, seq := range seqs {
		if len(seq) == 0 {
			return nil, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "empty sequence"}
		}

		for _, m := range seq {
			rows, cols := m.Dims()
			if rows != v.Shape[0] || cols != v.Shape[1] {
				return nil, &errtypes.ShapeMismatchError{Op: "pack_sparse", Want: v.Shape, Got: []int{rows, cols}}
			}
		}
	}

	resolved := packDType(dtype.Resolve([]dtype.DataType{v.DType}, []dtype.DataType{dtype.Float32}))

	return value.NewSparse(resolved, seqs, v.Shape), nil
}

// OneHot converts sequences of category indices into a sparse value where
// sequence i is a (len_i, vocab) one-hot matrix.
func OneHot(seqs [][]int, vocab int) (*value.Value, error) {
	if len(seqs) == 0 {
		return nil, &errtypes.UnsupportedInputError{Op: "one_hot", Reason: "empty batch"}
	}

	groups := make([][]*sparse.CSR, len(seqs))
	for i, indices := range seqs {
		m, err := sparse.OneHotRows(indices, vocab)
		if err != nil {
			return nil, fmt.Errorf("one_hot: sequence %d: %w", i, err)
		}

		groups[i] = []*sparse.CSR{m}
	}

	return value.NewSparse(dtype.Float32, groups, []int{vocab}), nil
}

// vectorDim collapses a declared sparse sample shape to its single
// dimension. Leading 1-dims are degenerate, so (1, d) declares the same
// inputs as (d).
func vectorDim(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "sparse variable needs a sample dimension"}
	}

	for _, d := range shape[:len(shape)-1] {
		if d != 1 {
			return 0, &errtypes.UnsupportedInputError{Op: "pack_sparse", Reason: "row samples need a vector shape; use PackSparseSamples for matrix samples"}
		}
	}

	return shape[len(shape)-1], nil
}

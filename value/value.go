// Package value implements the engine's value objects: the packed form a
// sanitized batch takes before it crosses into the native engine, and the
// accessors that convert a value back into per-sequence host arrays.
package value

import (
	"github.com/pdevine/tensor"

	"github.com/batchkit/batchkit/dtype"
	"github.com/batchkit/batchkit/sparse"
	"github.com/batchkit/batchkit/types/errtypes"
)

type Storage int

const (
	// Dense storage is a zero-padded (N, T, sample...) tensor plus a mask.
	Dense Storage = iota
	// Sparse storage keeps one CSR group per sequence, each with its own
	// row count. No padding is materialized.
	Sparse
)

func (s Storage) String() string {
	if s == Sparse {
		return "sparse"
	}

	return "dense"
}

// Value is the tagged union carried to and from the engine. The storage tag
// is fixed at construction and never re-inspected from the data itself.
type Value struct {
	dt      dtype.DataType
	storage Storage

	// dense path
	packed    *tensor.Dense
	mask      *Mask
	seqShapes [][]int

	// sparse path
	seqs   [][]*sparse.CSR
	sample []int
}

// NewDense wraps a zero-padded (N, T, sample...) tensor. seqShapes records
// each sequence's pre-padding shape so unpacking can reproduce it exactly.
func NewDense(dt dtype.DataType, packed *tensor.Dense, mask *Mask, seqShapes [][]int) *Value {
	return &Value{dt: dt, storage: Dense, packed: packed, mask: mask, seqShapes: seqShapes}
}

// NewSparse wraps per-sequence CSR groups. With a rank-1 sample shape each
// group is a single matrix whose rows are the samples; with a rank-2 sample
// shape each group member is one full sample matrix.
func NewSparse(dt dtype.DataType, seqs [][]*sparse.CSR, sample []int) *Value {
	return &Value{dt: dt, storage: Sparse, seqs: seqs, sample: sample}
}

func (v *Value) Storage() Storage {
	return v.storage
}

func (v *Value) DataType() dtype.DataType {
	return v.dt
}

// Mask returns the validity mask of a dense value, nil for sparse storage.
func (v *Value) Mask() *Mask {
	return v.mask
}

// Shape returns (N, T, sample...) where T is the longest sequence. Sparse
// storage computes T from the per-sequence row counts; nothing of that size
// is ever allocated.
func (v *Value) Shape() []int {
	if v.storage == Dense {
		return []int(v.packed.Shape())
	}

	var maxLen int
	for i := range v.seqs {
		if n := v.seqLen(i); n > maxLen {
			maxLen = n
		}
	}

	return append([]int{len(v.seqs), maxLen}, v.sample...)
}

func (v *Value) seqLen(i int) int {
	if len(v.sample) == 1 {
		rows, _ := v.seqs[i][0].Dims()
		return rows
	}

	return len(v.seqs[i])
}

// ToNDArrays slices a dense value back into per-sequence arrays, each with
// its original pre-padding shape.
func (v *Value) ToNDArrays() ([]*tensor.Dense, error) {
	if v.storage != Dense {
		return nil, &errtypes.TypeMismatchError{Op: "to_ndarrays", Want: Dense.String(), Got: v.storage.String()}
	}

	shape := v.packed.Shape()
	sampleN := 1
	for _, d := range shape[2:] {
		sampleN *= d
	}

	stride := shape[1] * sampleN

	out := make([]*tensor.Dense, shape[0])
	for i := range out {
		n := v.mask.SeqLen(i) * sampleN
		switch data := v.packed.Data().(type) {
		case []float32:
			row := make([]float32, n)
			copy(row, data[i*stride:])
			out[i] = tensor.New(tensor.WithShape(v.seqShapes[i]...), tensor.WithBacking(row))
		case []float64:
			row := make([]float64, n)
			copy(row, data[i*stride:])
			out[i] = tensor.New(tensor.WithShape(v.seqShapes[i]...), tensor.WithBacking(row))
		case float32:
			// a packed tensor whose dims are all 1 hands back a bare scalar
			out[i] = tensor.New(tensor.WithShape(v.seqShapes[i]...), tensor.WithBacking([]float32{data}))
		case float64:
			out[i] = tensor.New(tensor.WithShape(v.seqShapes[i]...), tensor.WithBacking([]float64{data}))
		default:
			return nil, &errtypes.UnsupportedInputError{Op: "to_ndarrays", Reason: "packed value has non-float backing"}
		}
	}

	return out, nil
}

// ToCSRs returns one matrix per sequence of a sparse value, each with its
// true row count. Matrix-sample sequences must be degenerate (length 1); the
// sample matrix itself is returned.
func (v *Value) ToCSRs() ([]*sparse.CSR, error) {
	if v.storage != Sparse {
		return nil, &errtypes.TypeMismatchError{Op: "to_csrs", Want: Sparse.String(), Got: v.storage.String()}
	}

	out := make([]*sparse.CSR, len(v.seqs))
	for i, seq := range v.seqs {
		if len(seq) != 1 {
			return nil, &errtypes.UnsupportedInputError{Op: "to_csrs", Reason: "sequence of matrix samples has no single-matrix form"}
		}

		out[i] = seq[0]
	}

	return out, nil
}

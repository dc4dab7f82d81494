// Package batch reconciles collections of variable-length host sequences
// into the canonical packed values the engine consumes: a zero-padded dense
// tensor with a validity mask, or per-sequence compressed sparse rows.
package batch

import (
	"log/slog"
	"slices"

	"github.com/pdevine/tensor"

	"github.com/batchkit/batchkit/dtype"
	"github.com/batchkit/batchkit/types/errtypes"
	"github.com/batchkit/batchkit/value"
)

// Variable is the declared input a batch is sanitized against. Shape is the
// per-sample shape; nil or empty means scalar samples. DType may be left
// Unspecified, in which case the type is inferred from the data.
type Variable struct {
	Shape    []int
	DType    dtype.DataType
	IsSparse bool
}

// Pack converts an ordered batch of dense sequences into a single
// zero-padded (N, T, sample...) value plus its mask. Dimension 0 of every
// sequence is its length; a sequence whose shape equals the declared sample
// shape is taken as a single sample. starts marks, per sequence, whether it
// opens a new stream; nil means no stream boundaries. Sequence order is
// preserved. The value's type follows dtype.Resolve, except that a variable
// declared float16 or bfloat16 packs as float32 since the backing is always
// widened; a fully unspecified type packs as float32.
func Pack(v *Variable, seqs []*tensor.Dense, starts []bool) (*value.Value, error) {
	if len(seqs) == 0 {
		return nil, &errtypes.UnsupportedInputError{Op: "pack", Reason: "empty batch"}
	}

	if starts != nil && len(starts) != len(seqs) {
		return nil, &errtypes.ShapeMismatchError{Op: "pack", Want: []int{len(seqs)}, Got: []int{len(starts)}}
	}

	sample := v.Shape
	sampleN := mul(sample...)

	lengths := make([]int, len(seqs))
	seqShapes := make([][]int, len(seqs))
	observed := make([]dtype.DataType, len(seqs))
	for i, seq := range seqs {
		n, err := seqLen(sample, seq.Shape())
		if err != nil {
			return nil, err
		}

		dt, err := observe(seq)
		if err != nil {
			return nil, err
		}

		lengths[i] = n
		seqShapes[i] = slices.Clone(seq.Shape())
		observed[i] = dt
	}

	resolved := packDType(dtype.Resolve([]dtype.DataType{v.DType}, observed))

	maxLen := slices.Max(lengths)

	mask := value.NewMask(len(seqs), maxLen)
	for i, n := range lengths {
		for t := 0; t < n; t++ {
			mask.Set(i, t, value.MaskValid)
		}

		if starts != nil && starts[i] {
			mask.Set(i, 0, value.MaskStart)
		}
	}

	shape := append([]int{len(seqs), maxLen}, sample...)

	var packed *tensor.Dense
	if resolved == dtype.Float64 {
		buf := make([]float64, mul(shape...))
		for i, seq := range seqs {
			copyInto64(buf[i*maxLen*sampleN:], seq)
		}

		packed = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(buf))
	} else {
		buf := make([]float32, mul(shape...))
		for i, seq := range seqs {
			copyInto32(buf[i*maxLen*sampleN:], seq)
		}

		packed = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(buf))
	}

	slog.Debug("packed dense batch", "sequences", len(seqs), "max_seq_len", maxLen, "dtype", resolved)

	return value.NewDense(resolved, packed, mask, seqShapes), nil
}

// seqLen reconciles a sequence's shape against the declared sample shape and
// returns its length. Trailing 1-dims of the declared shape may be elided by
// the data, so shape (L,) against a declared (1,) is L samples.
func seqLen(sample []int, shape tensor.Shape) (int, error) {
	dims := []int(shape)
	if len(dims) == 0 {
		return 0, &errtypes.UnsupportedInputError{Op: "pack", Reason: "scalar sequence lacks a length axis"}
	}

	if len(dims) < len(sample) {
		return 0, &errtypes.UnsupportedInputError{Op: "pack", Reason: "sequence has fewer axes than the declared sample shape"}
	}

	switch {
	case slices.Equal(dims[1:], sample):
		return dims[0], nil
	case slices.Equal(dims, sample):
		// a bare sample is a sequence of one
		return 1, nil
	case slices.Equal(dims[1:], trimOnes(sample)):
		return dims[0], nil
	}

	return 0, &errtypes.ShapeMismatchError{Op: "pack", Want: sample, Got: dims}
}

func trimOnes(shape []int) []int {
	n := len(shape)
	for n > 0 && shape[n-1] == 1 {
		n--
	}

	return shape[:n]
}

// observe reports the engine type a sequence's backing converts to. A tensor
// whose dims are all 1 hands back a bare scalar instead of a slice.
func observe(d *tensor.Dense) (dtype.DataType, error) {
	switch d.Data().(type) {
	case []float64, float64:
		return dtype.Float64, nil
	case []float32, float32, []int, int, []int32, int32, []int64, int64:
		return dtype.Float32, nil
	default:
		return dtype.Unspecified, &errtypes.UnsupportedInputError{Op: "pack", Reason: "sequence has non-numeric backing"}
	}
}

func copyInto32(dst []float32, d *tensor.Dense) {
	switch src := d.Data().(type) {
	case []float32:
		copy(dst, src)
	case []float64:
		for i, v := range src {
			dst[i] = float32(v)
		}
	case []int:
		for i, v := range src {
			dst[i] = float32(v)
		}
	case []int32:
		for i, v := range src {
			dst[i] = float32(v)
		}
	case []int64:
		for i, v := range src {
			dst[i] = float32(v)
		}
	case float32:
		dst[0] = src
	case float64:
		dst[0] = float32(src)
	case int:
		dst[0] = float32(src)
	case int32:
		dst[0] = float32(src)
	case int64:
		dst[0] = float32(src)
	}
}

func copyInto64(dst []float64, d *tensor.Dense) {
	switch src := d.Data().(type) {
	case []float64:
		copy(dst, src)
	case []float32:
		for i, v := range src {
			dst[i] = float64(v)
		}
	case []int:
		for i, v := range src {
			dst[i] = float64(v)
		}
	case []int32:
		for i, v := range src {
			dst[i] = float64(v)
		}
	case []int64:
		for i, v := range src {
			dst[i] = float64(v)
		}
	case float64:
		dst[0] = src
	case float32:
		dst[0] = float64(src)
	case int:
		dst[0] = float64(src)
	case int32:
		dst[0] = float64(src)
	case int64:
		dst[0] = float64(src)
	}
}

// packDType maps a resolved type to the one a packed value stores.
// Half-precision exists only on the wire; a variable declared float16 or
// bfloat16 packs as float32, the width the backing actually holds.
// Unspecified falls back to the engine default.
func packDType(dt dtype.DataType) dtype.DataType {
	switch dt {
	case dtype.Float16, dtype.BFloat16, dtype.Unspecified:
		return dtype.Float32
	default:
		return dt
	}
}

func mul(s ...int) int {
	p := 1
	for _, v := range s {
		p *= v
	}

	return p
}

package batch

import (
	"golang.org/x/sync/errgroup"

	"github.com/pdevine/tensor"

	"github.com/batchkit/batchkit/dtype"
	"github.com/batchkit/batchkit/types/errtypes"
	"github.com/batchkit/batchkit/value"
)

// PackRaw decodes per-sequence little-endian raw buffers of the given type
// and packs them through the dense path. Each sequence's length is inferred
// from its buffer size; a buffer that does not divide into whole samples is
// a shape error. Buffers decode concurrently, result order is preserved.
func PackRaw(v *Variable, dt dtype.DataType, seqs [][]byte, starts []bool) (*value.Value, error) {
	if dt.Size() == 0 {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_raw", Reason: "raw buffers need a concrete data type"}
	}

	if len(seqs) == 0 {
		return nil, &errtypes.UnsupportedInputError{Op: "pack_raw", Reason: "empty batch"}
	}

	sampleN := mul(v.Shape...)

	var g errgroup.Group
	denses := make([]*tensor.Dense, len(seqs))
	for i, raw := range seqs {
		g.Go(func() error {
			if len(raw)%(dt.Size()*sampleN) != 0 {
				return &errtypes.ShapeMismatchError{Op: "pack_raw", Want: v.Shape, Got: []int{len(raw) / dt.Size()}}
			}

			n := len(raw) / dt.Size() / sampleN
			shape := append([]int{n}, v.Shape...)

			if dt == dtype.Float64 {
				f64s, err := dtype.DecodeFloats64(raw)
				if err != nil {
					return err
				}

				denses[i] = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(f64s))
				return nil
			}

			f32s, err := dtype.DecodeFloats(dt, raw)
			if err != nil {
				return err
			}

			denses[i] = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(f32s))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Pack(v, denses, starts)
}

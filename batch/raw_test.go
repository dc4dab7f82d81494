package batch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/d4l3k/go-bfloat16"
	"github.com/google/go-cmp/cmp"
	"github.com/x448/float16"

	"github.com/batchkit/batchkit/dtype"
	"github.com/batchkit/batchkit/types/errtypes"
	"github.com/batchkit/batchkit/value"
)

func rawF32(t *testing.T, vals ...float32) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, vals); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func rawF16(t *testing.T, vals ...float32) []byte {
	t.Helper()

	u16s := make([]uint16, len(vals))
	for i := range vals {
		u16s[i] = float16.Fromfloat32(vals[i]).Bits()
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, u16s); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func TestPackRaw(t *testing.T) {
	v := &Variable{Shape: []int{2}}
	packed, err := PackRaw(v, dtype.Float32, [][]byte{
		rawF32(t, 1, 2, 3, 4),
		rawF32(t, 5, 6),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]int{2, 2, 2}, packed.Shape()); diff != "" {
		t.Fatalf("unexpected shape (-want +got):\n%s", diff)
	}

	if got, want := packed.Mask().SeqLen(0), 2; got != want {
		t.Fatalf("SeqLen(0) = %d, want %d", got, want)
	}

	if got, want := packed.Mask().SeqLen(1), 1; got != want {
		t.Fatalf("SeqLen(1) = %d, want %d", got, want)
	}

	nds, err := packed.ToNDArrays()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]float32{1, 2, 3, 4}, nds[0].Data()); diff != "" {
		t.Fatalf("unexpected sequence 0 (-want +got):\n%s", diff)
	}
}

func TestPackRawHalfPrecision(t *testing.T) {
	v := &Variable{Shape: []int{1}}
	packed, err := PackRaw(v, dtype.Float16, [][]byte{
		rawF16(t, 0.5, -1, 2),
		rawF16(t, 8),
	}, []bool{true, false})
	if err != nil {
		t.Fatal(err)
	}

	// half precision widens to float32
	if got, want := packed.DataType(), dtype.Float32; got != want {
		t.Fatalf("dtype = %v, want %v", got, want)
	}

	want := [][]value.MaskValue{
		{value.MaskStart, value.MaskValid, value.MaskValid},
		{value.MaskValid, value.MaskPad, value.MaskPad},
	}
	if diff := cmp.Diff(want, maskRows(t, packed)); diff != "" {
		t.Fatalf("unexpected mask (-want +got):\n%s", diff)
	}

	nds, err := packed.ToNDArrays()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]float32{0.5, -1, 2}, nds[0].Data()); diff != "" {
		t.Fatalf("unexpected sequence 0 (-want +got):\n%s", diff)
	}
}

func TestPackRawFloat64(t *testing.T) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, []float64{1.5, 2.5}); err != nil {
		t.Fatal(err)
	}

	v := &Variable{Shape: []int{1}}
	packed, err := PackRaw(v, dtype.Float64, [][]byte{buf.Bytes()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// double precision survives the raw path end to end
	if got, want := packed.DataType(), dtype.Float64; got != want {
		t.Fatalf("dtype = %v, want %v", got, want)
	}

	nds, err := packed.ToNDArrays()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]float64{1.5, 2.5}, nds[0].Data()); diff != "" {
		t.Fatalf("unexpected sequence 0 (-want +got):\n%s", diff)
	}
}

func TestPackRawBFloat16(t *testing.T) {
	v := &Variable{Shape: []int{1}}
	packed, err := PackRaw(v, dtype.BFloat16, [][]byte{
		bfloat16.EncodeFloat32([]float32{0.5, -1, 2}),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := packed.DataType(), dtype.Float32; got != want {
		t.Fatalf("dtype = %v, want %v", got, want)
	}

	nds, err := packed.ToNDArrays()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]float32{0.5, -1, 2}, nds[0].Data()); diff != "" {
		t.Fatalf("unexpected sequence 0 (-want +got):\n%s", diff)
	}
}

func TestPackRawErrors(t *testing.T) {
	var shapeErr *errtypes.ShapeMismatchError
	var inputErr *errtypes.UnsupportedInputError

	t.Run("partial sample", func(t *testing.T) {
		v := &Variable{Shape: []int{2}}
		if _, err := PackRaw(v, dtype.Float32, [][]byte{rawF32(t, 1, 2, 3)}, nil); !errors.As(err, &shapeErr) {
			t.Fatalf("got %v, want ShapeMismatchError", err)
		}
	})

	t.Run("unspecified type", func(t *testing.T) {
		v := &Variable{Shape: []int{2}}
		if _, err := PackRaw(v, dtype.Unspecified, [][]byte{rawF32(t, 1, 2)}, nil); !errors.As(err, &inputErr) {
			t.Fatalf("got %v, want UnsupportedInputError", err)
		}
	})
}

package dtype

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// DecodeFloats converts a little-endian raw buffer of the given type into
// float32 values. Half-precision inputs are widened; double precision must go
// through DecodeFloats64 so no precision is dropped silently.
func DecodeFloats(dt DataType, raw []byte) ([]float32, error) {
	if dt.Size() == 0 {
		return nil, fmt.Errorf("cannot decode %s data", dt)
	}

	if len(raw)%dt.Size() != 0 {
		return nil, fmt.Errorf("%d byte buffer is not a multiple of %s element size", len(raw), dt)
	}

	switch dt {
	case Float32:
		f32s := make([]float32, len(raw)/4)
		if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, f32s); err != nil {
			return nil, err
		}

		return f32s, nil
	case Float16:
		u16s := make([]uint16, len(raw)/2)
		if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, u16s); err != nil {
			return nil, err
		}

		f32s := make([]float32, len(u16s))
		for i := range u16s {
			f32s[i] = float16.Frombits(u16s[i]).Float32()
		}

		return f32s, nil
	case BFloat16:
		return bfloat16.DecodeFloat32(raw), nil
	default:
		return nil, fmt.Errorf("cannot decode %s data to float32", dt)
	}
}

// DecodeFloats64 converts a little-endian float64 buffer.
func DecodeFloats64(raw []byte) ([]float64, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%d byte buffer is not a multiple of float64 element size", len(raw))
	}

	f64s := make([]float64, len(raw)/8)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, f64s); err != nil {
		return nil, err
	}

	return f64s, nil
}

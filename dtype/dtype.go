// Package dtype defines the element types accepted by the engine value layer
// and the rules for resolving one type from a mix of declared variables and
// observed host data.
package dtype

import (
	"fmt"
	"reflect"
)

type DataType uint32

const (
	// Unspecified is a valid resolver result, not an error. It means no
	// variable carried a concrete type and no data was seen.
	Unspecified DataType = iota
	Float32
	Float64
	Float16
	BFloat16
)

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	default:
		return "unspecified"
	}
}

// Size returns the number of bytes per element, or 0 for Unspecified.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	case Float16, BFloat16:
		return 2
	default:
		return 0
	}
}

// Parse maps the usual dtype spellings to a DataType.
func Parse(s string) (DataType, error) {
	switch s {
	case "float", "float32", "f32", "fp32":
		return Float32, nil
	case "double", "float64", "f64", "fp64":
		return Float64, nil
	case "float16", "f16", "fp16", "half":
		return Float16, nil
	case "bfloat16", "bf16":
		return BFloat16, nil
	default:
		return Unspecified, fmt.Errorf("unknown data type: %q", s)
	}
}

// FromKind maps a reflect.Kind of host data to the engine type it converts
// to. Integer kinds fold to single precision; only float64 keeps double.
func FromKind(k reflect.Kind) DataType {
	switch k {
	case reflect.Float64:
		return Float64
	case reflect.Float32,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Float32
	default:
		return Unspecified
	}
}

package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/batchkit/batchkit/sparse"
)

type DumpOptions struct {
	// Items is the number of elements to print at the beginning and end of each dimension.
	Items int

	// Precision is the number of decimal places to print.
	Precision int
}

// Dump renders a dense value for debugging, eliding the middle of large
// dimensions. Sparse values render as their per-sequence dimensions.
func Dump(v *Value, opts ...DumpOptions) string {
	if len(opts) < 1 {
		opts = append(opts, DumpOptions{
			Items:     3,
			Precision: 4,
		})
	}

	if v.storage == Sparse {
		var sb strings.Builder
		fmt.Fprintf(&sb, "sparse%v[", v.Shape())
		for i := range v.seqs {
			if i > 0 {
				fmt.Fprint(&sb, ", ")
			}
			fmt.Fprintf(&sb, "(%d nnz)", nnz(v.seqs[i]))
		}
		fmt.Fprint(&sb, "]")

		return sb.String()
	}

	switch data := v.packed.Data().(type) {
	case []float32:
		return dump(data, v.Shape(), opts[0])
	case []float64:
		return dump(data, v.Shape(), opts[0])
	case float32:
		return dump([]float32{data}, v.Shape(), opts[0])
	case float64:
		return dump([]float64{data}, v.Shape(), opts[0])
	default:
		return "<unsupported>"
	}
}

func nnz(seq []*sparse.CSR) int {
	var n int
	for _, m := range seq {
		n += m.NNZ()
	}

	return n
}

func dump[E float32 | float64](s []E, shape []int, opts DumpOptions) string {
	var sb strings.Builder
	var f func([]int, int)
	f = func(dims []int, stride int) {
		prefix := strings.Repeat(" ", len(shape)-len(dims)+1)
		fmt.Fprint(&sb, "[")
		defer func() { fmt.Fprint(&sb, "]") }()
		for i := 0; i < dims[0]; i++ {
			if i >= opts.Items && i < dims[0]-opts.Items {
				fmt.Fprint(&sb, "..., ")
				// skip to next printable element
				skip := dims[0] - 2*opts.Items
				if len(dims) > 1 {
					stride += mul(append(dims[1:], skip)...)
					fmt.Fprint(&sb, strings.Repeat("\n", len(dims)-1), prefix)
				}
				i += skip - 1
			} else if len(dims) > 1 {
				f(dims[1:], stride)
				stride += mul(dims[1:]...)
				if i < dims[0]-1 {
					fmt.Fprint(&sb, ",", strings.Repeat("\n", len(dims)-1), prefix)
				}
			} else {
				fmt.Fprint(&sb, strconv.FormatFloat(float64(s[stride+i]), 'f', opts.Precision, 64))
				if i < dims[0]-1 {
					fmt.Fprint(&sb, ", ")
				}
			}
		}
	}
	f(shape, 0)

	return sb.String()
}

func mul(s ...int) int {
	p := 1
	for _, v := range s {
		p *= v
	}

	return p
}

package dtype

// Resolve picks the single type a conversion should use. Declared variable
// types are checked before anything observed from data: the first concrete
// declared type wins outright. Among data-derived types, double precision
// wins over single, and half-precision inputs resolve to Float32 since they
// are widened on decode. With nothing concrete on either side the result is
// Unspecified.
func Resolve(declared, observed []DataType) DataType {
	for _, dt := range declared {
		if dt != Unspecified {
			return dt
		}
	}

	resolved := Unspecified
	for _, dt := range observed {
		switch dt {
		case Float64:
			return Float64
		case Float32, Float16, BFloat16:
			resolved = Float32
		}
	}

	return resolved
}

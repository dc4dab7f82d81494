package value

type MaskValue uint8

const (
	// MaskPad marks a padded timestep that carries no data.
	MaskPad MaskValue = iota
	// MaskValid marks a timestep continuing the current stream.
	MaskValid
	// MaskStart marks a timestep that opens a new stream.
	MaskStart
)

func (v MaskValue) String() string {
	switch v {
	case MaskValid:
		return "valid"
	case MaskStart:
		return "start"
	default:
		return "pad"
	}
}

// Mask records, per sequence and timestep, whether a slot of a padded dense
// value holds real data, padding, or the start of a new stream.
type Mask struct {
	rows, cols int
	data       []MaskValue
}

func NewMask(rows, cols int) *Mask {
	return &Mask{rows: rows, cols: cols, data: make([]MaskValue, rows*cols)}
}

func (m *Mask) Dims() (rows, cols int) {
	return m.rows, m.cols
}

func (m *Mask) At(i, t int) MaskValue {
	return m.data[i*m.cols+t]
}

func (m *Mask) Set(i, t int, v MaskValue) {
	m.data[i*m.cols+t] = v
}

// Row returns sequence i's timestep markers.
func (m *Mask) Row(i int) []MaskValue {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// SeqLen returns sequence i's true length, the count of leading non-pad
// timesteps.
func (m *Mask) SeqLen(i int) int {
	row := m.Row(i)
	for t, v := range row {
		if v == MaskPad {
			return t
		}
	}

	return len(row)
}

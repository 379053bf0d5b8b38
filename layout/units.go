package layout

// This file derives every size and offset from the base size.

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// imageReferenceSize is the base size at which an image renders at its pixel size.
const imageReferenceSize = 24.0

// codeWidthFactor approximates one monospace character width as a fraction of the base size.
const codeWidthFactor = 0.7

// Metrics holds the fixed fractions of the base size.
type Metrics struct {
	Base    float64 `json:"base"`
	Double  float64 `json:"double"`
	Half    float64 `json:"half"`
	Third   float64 `json:"third"`
	Quarter float64 `json:"quarter"`
	Sixth   float64 `json:"sixth"`
	Eighth  float64 `json:"eighth"`
}

// NewMetrics computes the derived metrics for a base size.
func NewMetrics(base float64) Metrics {
	return Metrics{
		Base:    base,
		Double:  base * 2,
		Half:    base / 2,
		Third:   base / 3,
		Quarter: base / 4,
		Sixth:   base / 6,
		Eighth:  base / 8,
	}
}

// HeaderSize returns the point size for a header level. Level 0 (a "#" line that
// matched no level prefix) uses the base size.
func (m Metrics) HeaderSize(level int) float64 {
	switch level {
	case 1:
		return m.Double + m.Sixth
	case 2:
		return m.Double
	case 3:
		return m.Base + m.Half + m.Third
	case 4:
		return m.Base + m.Half + m.Sixth
	case 5:
		return m.Base + m.Third
	case 6:
		return m.Base + m.Eighth
	default:
		return m.Base
	}
}

// BulletIndent returns the number of leading spaces for a bullet depth.
func (m Metrics) BulletIndent(depth int) int {
	switch depth {
	case 1:
		return int(m.Sixth)
	case 2:
		return int(m.Third)
	default:
		return 0
	}
}

// ImageScale is the factor applied to source pixel sizes.
func (m Metrics) ImageScale() float64 { return m.Base / imageReferenceSize }

// Origin is the cursor before the first line.
func (m Metrics) Origin() Cursor {
	return Cursor{X: m.Half, Y: m.Base + m.Half + m.Quarter}
}

// LineAdvance is added to the vertical cursor after every line.
func (m Metrics) LineAdvance() float64 { return m.Base + m.Sixth }

// BodyIndent is the horizontal start of base-size lines.
func (m Metrics) BodyIndent() float64 { return m.Base + m.Sixth }

// CodeWidth is the shared highlight right edge for the longest code line.
func (m Metrics) CodeWidth(maxLength int) float64 {
	return float64(maxLength) * m.Base * codeWidthFactor
}

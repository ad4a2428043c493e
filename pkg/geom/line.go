package geom

// LineObject is a set of line segments, two vertices per segment. The
// extraction engine never produces one; it exists so callers can hand
// any geometry to a mapper and get a type error back.
type LineObject struct {
	Coords []float32 `json:"coords"`
	Colors []float32 `json:"colors"`
	Bounds Bounds    `json:"bounds"`
}

func (l *LineObject) ObjectKind() Kind    { return KindLine }
func (l *LineObject) GeomBounds() *Bounds { return &l.Bounds }

// SegmentCount returns the number of segments.
func (l *LineObject) SegmentCount() int {
	return len(l.Coords) / 6
}

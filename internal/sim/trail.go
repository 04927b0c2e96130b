package sim

import "github.com/san-kum/pendsim/internal/physics"

const DefaultTrailLength = 1200

// Trail is a bounded ring of recent bob positions.
type Trail struct {
	points []physics.Point
	start  int
	size   int
}

func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultTrailLength
	}
	return &Trail{points: make([]physics.Point, capacity)}
}

func (tr *Trail) Push(p physics.Point) {
	if tr.size < len(tr.points) {
		tr.points[(tr.start+tr.size)%len(tr.points)] = p
		tr.size++
		return
	}
	tr.points[tr.start] = p
	tr.start = (tr.start + 1) % len(tr.points)
}

func (tr *Trail) Len() int { return tr.size }
func (tr *Trail) Cap() int { return len(tr.points) }

// Points returns the kept positions, oldest first.
func (tr *Trail) Points() []physics.Point {
	out := make([]physics.Point, tr.size)
	for i := 0; i < tr.size; i++ {
		out[i] = tr.points[(tr.start+i)%len(tr.points)]
	}
	return out
}

func (tr *Trail) Reset() {
	tr.start = 0
	tr.size = 0
}

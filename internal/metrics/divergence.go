package metrics

import (
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

// Divergence is the largest distance between a bob of the observed run and
// the same bob of a reference trajectory, compared sample by sample. Samples
// past the end of the reference are ignored.
type Divergence struct {
	name      string
	model     physics.Model
	reference [][]physics.Point
	bob       int
	index     int
	max       float64
}

func NewDivergence(model physics.Model, reference [][]physics.Point, bob int) *Divergence {
	return &Divergence{name: "divergence", model: model, reference: reference, bob: bob}
}

func (d *Divergence) Name() string { return d.name }

func (d *Divergence) Observe(x dynamo.State, t float64) {
	defer func() { d.index++ }()
	if d.index >= len(d.reference) {
		return
	}
	ref := d.reference[d.index]
	pos := d.model.Positions(x)
	if d.bob >= len(ref) || d.bob >= len(pos) {
		return
	}
	dist := math.Hypot(pos[d.bob].X-ref[d.bob].X, pos[d.bob].Y-ref[d.bob].Y)
	d.max = math.Max(d.max, dist)
}

func (d *Divergence) Value() float64 { return d.max }

func (d *Divergence) Reset() {
	d.index = 0
	d.max = 0
}

package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// Flips counts how often a link swings over the top, that is how often its
// angle crosses an odd multiple of π.
type Flips struct {
	name    string
	link    int
	started bool
	sector  float64
	flips   int
}

// NewFlips watches link (0-based). Its name is flips1 or flips2.
func NewFlips(link int) *Flips {
	return &Flips{name: fmt.Sprintf("flips%d", link+1), link: link}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) Observe(x dynamo.State, t float64) {
	if f.link >= len(x)/2 {
		return
	}
	sector := math.Floor((x[f.link] + math.Pi) / (2 * math.Pi))
	if f.started && sector != f.sector {
		f.flips += int(math.Abs(sector - f.sector))
	}
	f.sector = sector
	f.started = true
}

func (f *Flips) Value() float64 { return float64(f.flips) }

func (f *Flips) Reset() {
	f.started = false
	f.sector = 0
	f.flips = 0
}

// AngularSpeed is the root mean square angular velocity over all links and
// observed states.
type AngularSpeed struct {
	name    string
	sumSq   float64
	samples int
}

func NewAngularSpeed() *AngularSpeed {
	return &AngularSpeed{name: "angular_speed"}
}

func (a *AngularSpeed) Name() string { return a.name }

func (a *AngularSpeed) Observe(x dynamo.State, t float64) {
	for _, w := range x.Velocities() {
		a.sumSq += w * w
		a.samples++
	}
}

func (a *AngularSpeed) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return math.Sqrt(a.sumSq / float64(a.samples))
}

func (a *AngularSpeed) Reset() {
	a.sumSq = 0
	a.samples = 0
}

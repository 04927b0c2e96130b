package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// DoublePendulum is two point masses on rigid massless links, the second
// hanging from the first. State is [θ1, θ2, ω1, ω2].
type DoublePendulum struct {
	p Params
}

func NewDoublePendulum(p Params) (*DoublePendulum, error) {
	if err := p.Validate(Double); err != nil {
		return nil, err
	}
	return &DoublePendulum{p: p}, nil
}

func (d *DoublePendulum) Variant() Variant { return Double }
func (d *DoublePendulum) Params() Params   { return d.p }
func (d *DoublePendulum) StateDim() int    { return 4 }

func (d *DoublePendulum) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return derive(d, x)
}

// Accelerations evaluates the Lagrangian equations of motion. The shared
// factor 2m1+m2-m2·cos(2Δ) is at least 2m1 for valid masses; anything else
// means the parameters were corrupted and is reported instead of divided.
func (d *DoublePendulum) Accelerations(x dynamo.State) ([]float64, error) {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.p.M1, d.p.M2, d.p.L1, d.p.L2, d.p.G

	delta := theta1 - theta2
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	base := 2*m1 + m2 - m2*math.Cos(2*delta)
	if !(base > 0) || math.IsInf(base, 0) {
		return nil, fmt.Errorf("%w: degenerate mass matrix (2m1+m2-m2·cos2Δ = %g)", dynamo.ErrNumericFailure, base)
	}
	den1 := l1 * base
	den2 := l2 * base

	acc1 := (-g*(2*m1+m2)*math.Sin(theta1) -
		m2*g*math.Sin(theta1-2*theta2) -
		2*sinD*m2*(omega2*omega2*l2+omega1*omega1*l1*cosD)) / den1

	acc2 := 2 * sinD * (omega1*omega1*l1*(m1+m2) +
		g*(m1+m2)*math.Cos(theta1) +
		omega2*omega2*l2*m2*cosD) / den2

	return []float64{acc1, acc2}, nil
}

func (d *DoublePendulum) Positions(x dynamo.State) []Point {
	x1 := d.p.Origin.X + d.p.L1*math.Sin(x[0])
	y1 := d.p.Origin.Y + d.p.L1*math.Cos(x[0])
	return []Point{
		{X: x1, Y: y1},
		{X: x1 + d.p.L2*math.Sin(x[1]), Y: y1 + d.p.L2*math.Cos(x[1])},
	}
}

func (d *DoublePendulum) Kinetic(x dynamo.State) float64 {
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]

	v1x := d.p.L1 * omega1 * math.Cos(theta1)
	v1y := -d.p.L1 * omega1 * math.Sin(theta1)
	v2x := v1x + d.p.L2*omega2*math.Cos(theta2)
	v2y := v1y - d.p.L2*omega2*math.Sin(theta2)

	return 0.5*d.p.M1*(v1x*v1x+v1y*v1y) + 0.5*d.p.M2*(v2x*v2x+v2y*v2y)
}

func (d *DoublePendulum) Potential(x dynamo.State) float64 {
	oy := d.p.Origin.Y
	bobs := d.Positions(x)
	raw := d.p.M1*d.p.G*(oy-bobs[0].Y) + d.p.M2*d.p.G*(oy-bobs[1].Y)

	rest := d.Positions(dynamo.State{0, 0, 0, 0})
	offset := d.p.M1*d.p.G*(oy-rest[0].Y) + d.p.M2*d.p.G*(oy-rest[1].Y)
	return raw - offset
}

func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	return d.Kinetic(x) + d.Potential(x)
}

package sim

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/physics"
)

func TestAngleFromPointer(t *testing.T) {
	pivot := physics.Point{X: 100, Y: 100}
	tests := []struct {
		name    string
		pointer physics.Point
		want    float64
	}{
		{"straight down", physics.Point{X: 100, Y: 300}, 0},
		{"right", physics.Point{X: 250, Y: 100}, math.Pi / 2},
		{"left", physics.Point{X: -50, Y: 100}, -math.Pi / 2},
		{"straight up", physics.Point{X: 100, Y: 0}, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AngleFromPointer(pivot, tt.pointer); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("angle = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestThrowTrackerKeepsRecentSamples(t *testing.T) {
	tr := NewThrowTracker()
	t0 := time.Unix(0, 0)

	// A slow start followed by a fast flick; only the flick should count.
	tr.Record(physics.Point{X: 0}, t0)
	tr.Record(physics.Point{X: 1}, t0.Add(time.Second))
	for i := 0; i < 4; i++ {
		tr.Record(physics.Point{X: 100 + 70*float64(i)}, t0.Add(2*time.Second+time.Duration(i)*time.Second))
	}

	if tr.Len() != DefaultThrowSamples {
		t.Fatalf("kept %d samples, want %d", tr.Len(), DefaultThrowSamples)
	}
	vx, vy, ok := tr.Velocity()
	if !ok {
		t.Fatal("expected a velocity")
	}
	if math.Abs(vx-1) > 1e-12 || vy != 0 {
		t.Errorf("velocity = (%f, %f), want (1, 0)", vx, vy)
	}
}

func TestThrowTrackerNeedsTwoSamples(t *testing.T) {
	tr := NewThrowTracker()
	if _, _, ok := tr.Velocity(); ok {
		t.Error("empty tracker reported a velocity")
	}
	tr.Record(physics.Point{X: 5}, time.Unix(1, 0))
	if w := tr.AngularVelocity(0, 1); w != 0 {
		t.Errorf("single sample gave ω = %f", w)
	}
	tr.Record(physics.Point{X: 9}, time.Unix(1, 0))
	if _, _, ok := tr.Velocity(); ok {
		t.Error("zero time span reported a velocity")
	}
}

func TestThrowTrackerAngularVelocity(t *testing.T) {
	tr := NewThrowTracker()
	t0 := time.Unix(10, 0)
	tr.Record(physics.Point{X: 0, Y: 0}, t0)
	tr.Record(physics.Point{X: 140, Y: 0}, t0.Add(time.Second))

	// Bob hanging straight down: moving right is pure tangential motion.
	if w := tr.AngularVelocity(0, 2); math.Abs(w-1) > 1e-12 {
		t.Errorf("ω = %f, want 1", w)
	}
	// Bob horizontal to the right: moving right is along the link.
	if w := tr.AngularVelocity(math.Pi/2, 2); math.Abs(w) > 1e-12 {
		t.Errorf("ω = %f, want 0", w)
	}

	// Bob horizontal to the right, pointer moving up the screen: the bob
	// swings on past the horizontal, so θ grows.
	up := NewThrowTracker()
	up.Record(physics.Point{X: 0, Y: 0}, t0)
	up.Record(physics.Point{X: 0, Y: -140}, t0.Add(time.Second))
	if w := up.AngularVelocity(math.Pi/2, 2); math.Abs(w-1) > 1e-12 {
		t.Errorf("ω = %f, want 1", w)
	}
}

func TestDragAndThrow(t *testing.T) {
	cfg := simpleConfig(integrators.KindRK4, 0, 0)
	cfg.Params.Origin = physics.Point{X: 400, Y: 200}
	s := mustSim(t, cfg)

	tr := NewThrowTracker()
	t0 := time.Unix(0, 0)
	pointer := physics.Point{X: 400, Y: 300}
	for i := 0; i < 3; i++ {
		pointer.X += 7
		tr.Record(pointer, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	if err := s.DragTo(0, pointer); err != nil {
		t.Fatal(err)
	}
	wantAngle := math.Atan2(21, 100)
	if got := s.State()[0]; math.Abs(got-wantAngle) > 1e-12 {
		t.Errorf("dragged angle = %f, want %f", got, wantAngle)
	}

	if err := s.Throw(0, tr); err != nil {
		t.Fatal(err)
	}
	if s.Mode() != Integrating {
		t.Fatalf("mode = %s after throw", s.Mode())
	}
	// 70 px/s / 70 sensitivity = 1 unit/s along x.
	want := math.Cos(wantAngle) / cfg.Params.L1
	if got := s.State()[1]; math.Abs(got-want) > 1e-9 {
		t.Errorf("thrown ω = %f, want %f", got, want)
	}
	if tr.Len() != 0 {
		t.Error("tracker not reset after throw")
	}
}

func TestPivot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Origin = physics.Point{X: 3, Y: 4}
	s := mustSim(t, cfg)

	if s.Pivot(0) != cfg.Params.Origin {
		t.Errorf("pivot of bob 0 = %+v", s.Pivot(0))
	}
	if s.Pivot(1) != s.Positions()[0] {
		t.Errorf("pivot of bob 1 = %+v, want first bob", s.Pivot(1))
	}
}

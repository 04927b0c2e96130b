package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pendsim/internal/dynamo"
)

func TestFlips(t *testing.T) {
	f := NewFlips(1)
	for _, theta := range []float64{0, 3, 3.2, 4, 9.5, 3} {
		f.Observe(dynamo.State{0, theta, 0, 0}, 0)
	}
	// 3→3.2 crosses π, 4→9.5 crosses 3π, 9.5→3 crosses both back.
	if f.Value() != 4 {
		t.Errorf("flips = %v, want 4", f.Value())
	}
	f.Reset()
	if f.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestFlipsIgnoresMissingLink(t *testing.T) {
	f := NewFlips(1)
	f.Observe(dynamo.State{4, 0}, 0)
	f.Observe(dynamo.State{-4, 0}, 0)
	if f.Value() != 0 {
		t.Errorf("flips = %v for a single link", f.Value())
	}
}

func TestAngularSpeed(t *testing.T) {
	a := NewAngularSpeed()
	a.Observe(dynamo.State{0, 0, 3, -4}, 0)
	if got, want := a.Value(), math.Sqrt(12.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("rms speed = %f, want %f", got, want)
	}
}

func TestFlipsName(t *testing.T) {
	if got := NewFlips(0).Name(); got != "flips1" {
		t.Errorf("name = %s", got)
	}
	if got := NewFlips(1).Name(); got != "flips2" {
		t.Errorf("name = %s", got)
	}
}

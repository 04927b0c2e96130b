package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

func TestRunRecordsDefaultMetrics(t *testing.T) {
	cfg := config.GetPreset("double_pendulum", "gentle")
	cfg.Duration = 1
	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != cfg.Steps() {
		t.Errorf("steps = %d, want %d", res.StepsTaken, cfg.Steps())
	}
	for _, name := range NewRegistry().DefaultMetrics(physics.Double) {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if res.Metrics["flips1"] != 0 {
		t.Errorf("gentle swing should not flip, got %g", res.Metrics["flips1"])
	}
}

func TestRunIsRepeatable(t *testing.T) {
	cfg := config.GetPreset("pendulum", "small")
	cfg.Duration = 0.5
	exp, err := New(cfg, nil, "energy")
	if err != nil {
		t.Fatal(err)
	}
	a, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.Metrics["energy"] != b.Metrics["energy"] {
		t.Error("two runs of one experiment differ")
	}
}

func TestNewRejects(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := New(cfg, nil, "nope"); err == nil {
		t.Error("unknown metric accepted")
	}

	single := config.GetPreset("pendulum", "small")
	if _, err := New(single, nil, "flips2"); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("flips2 on a simple pendulum: %v", err)
	}

	bad := config.DefaultConfig()
	bad.L1 = -1
	if _, err := New(bad, nil); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("negative length: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	names := r.ListMetrics()
	want := []string{"angular_speed", "energy", "energy_drift", "flips1", "flips2"}
	if len(names) != len(want) {
		t.Fatalf("metrics = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("metrics[%d] = %s, want %s", i, names[i], want[i])
		}
	}
	if got := r.DefaultMetrics(physics.Simple); len(got) != 4 {
		t.Errorf("simple defaults = %v", got)
	}
}

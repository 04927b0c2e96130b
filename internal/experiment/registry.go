package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/metrics"
	"github.com/san-kum/pendsim/internal/physics"
)

// MetricFactory builds a fresh metric for one run of model.
type MetricFactory func(model physics.Model) (dynamo.Metric, error)

// Registry maps metric names, as used in configs and flags, to factories.
type Registry struct {
	metrics map[string]MetricFactory
}

func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]MetricFactory)}

	r.metrics["energy"] = func(m physics.Model) (dynamo.Metric, error) { return metrics.NewEnergy(m), nil }
	r.metrics["energy_drift"] = func(m physics.Model) (dynamo.Metric, error) { return metrics.NewEnergyDrift(m), nil }
	r.metrics["angular_speed"] = func(m physics.Model) (dynamo.Metric, error) { return metrics.NewAngularSpeed(), nil }
	r.metrics["flips1"] = func(m physics.Model) (dynamo.Metric, error) { return metrics.NewFlips(0), nil }
	r.metrics["flips2"] = func(m physics.Model) (dynamo.Metric, error) {
		if m.Variant().Links() < 2 {
			return nil, fmt.Errorf("%w: flips2 needs a double pendulum", dynamo.ErrInvalidParameter)
		}
		return metrics.NewFlips(1), nil
	}

	return r
}

// Register adds or replaces a metric factory.
func (r *Registry) Register(name string, f MetricFactory) { r.metrics[name] = f }

func (r *Registry) GetMetric(name string, model physics.Model) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(model)
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are the metric names recorded when a run asks for none.
func (r *Registry) DefaultMetrics(v physics.Variant) []string {
	names := []string{"energy", "energy_drift", "angular_speed", "flips1"}
	if v.Links() > 1 {
		names = append(names, "flips2")
	}
	return names
}

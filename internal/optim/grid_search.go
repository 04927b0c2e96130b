package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/experiment"
	"golang.org/x/sync/errgroup"
)

var ErrNoCandidate = errors.New("optim: no candidate ran successfully")

// Axis is one searched parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// Candidate is one grid point and the metric value its run recorded.
type Candidate struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch runs one experiment per combination of axis values and ranks
// them by a recorded metric.
type GridSearch struct {
	Axes   []Axis
	Metric string
	// Maximize ranks the largest metric value first instead of the smallest.
	Maximize bool
	// Limit bounds the experiments running at once. Zero means GOMAXPROCS.
	Limit int
}

func NewGridSearch(metric string, axes ...Axis) *GridSearch {
	return &GridSearch{Axes: axes, Metric: metric}
}

func (g *GridSearch) validate() error {
	if g.Metric == "" {
		return fmt.Errorf("%w: grid search needs a metric", dynamo.ErrInvalidParameter)
	}
	if len(g.Axes) == 0 {
		return fmt.Errorf("%w: grid search needs at least one axis", dynamo.ErrInvalidParameter)
	}
	seen := make(map[string]bool, len(g.Axes))
	for _, a := range g.Axes {
		if len(a.Values) == 0 {
			return fmt.Errorf("%w: axis %q has no values", dynamo.ErrInvalidParameter, a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: axis %q given twice", dynamo.ErrInvalidParameter, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// Points lists every combination of axis values, the last axis varying
// fastest.
func (g *GridSearch) Points() []map[string]float64 {
	if len(g.Axes) == 0 {
		return nil
	}
	total := 1
	for _, a := range g.Axes {
		total *= len(a.Values)
	}
	if total == 0 {
		return nil
	}

	points := make([]map[string]float64, 0, total)
	idx := make([]int, len(g.Axes))
	for {
		p := make(map[string]float64, len(g.Axes))
		for i, a := range g.Axes {
			p[a.Name] = a.Values[idx[i]]
		}
		points = append(points, p)

		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(g.Axes[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return points
		}
	}
}

// Search builds and runs an experiment for every grid point. It returns
// the candidates in grid order and the index of the best one. A point whose
// build or run fails, or that did not record the metric, keeps its error in
// the candidate and is never best.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*experiment.Experiment, error),
) ([]Candidate, int, error) {
	if err := g.validate(); err != nil {
		return nil, -1, err
	}

	points := g.Points()
	candidates := make([]Candidate, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	limit := g.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(limit)

	for i, p := range points {
		eg.Go(func() error {
			candidates[i] = g.evaluate(ctx, build, p)
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return candidates, -1, err
	}

	best := -1
	for i, c := range candidates {
		if c.Err != nil || math.IsNaN(c.Value) {
			continue
		}
		if best < 0 || g.better(c.Value, candidates[best].Value) {
			best = i
		}
	}
	if best < 0 {
		return candidates, -1, ErrNoCandidate
	}
	return candidates, best, nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	build func(map[string]float64) (*experiment.Experiment, error),
	params map[string]float64,
) Candidate {
	c := Candidate{Params: params, Value: math.NaN()}
	exp, err := build(params)
	if err != nil {
		c.Err = err
		return c
	}
	result, err := exp.Run(ctx)
	if err != nil {
		c.Err = err
		return c
	}
	v, ok := result.Metrics[g.Metric]
	if !ok {
		c.Err = fmt.Errorf("metric %q not recorded", g.Metric)
		return c
	}
	c.Value = v
	return c
}

func (g *GridSearch) better(a, b float64) bool {
	if g.Maximize {
		return a > b
	}
	return a < b
}

// ParseAxis reads an axis written name=v1,v2,...
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Axis{}, fmt.Errorf("%w: axis %q is not name=v1,v2,...", dynamo.ErrInvalidParameter, s)
	}
	a := Axis{Name: name}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: axis %s: %v", dynamo.ErrInvalidParameter, name, err)
		}
		a.Values = append(a.Values, v)
	}
	return a, nil
}

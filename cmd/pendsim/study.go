package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pendsim/internal/analysis"
	"github.com/san-kum/pendsim/internal/automation"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/experiment"
	"github.com/san-kum/pendsim/internal/export"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/metrics"
	"github.com/san-kum/pendsim/internal/optim"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/plot"
	"github.com/san-kum/pendsim/internal/sim"
	"github.com/spf13/cobra"
)

func parseKinds(names []string) ([]integrators.Kind, error) {
	if len(names) == 0 {
		return integrators.Kinds(), nil
	}
	kinds := make([]integrators.Kind, 0, len(names))
	for _, name := range names {
		k, err := integrators.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	base, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	kinds, err := parseKinds(args[1:])
	if err != nil {
		return err
	}
	model, err := physics.New(base.Variant, base.Params)
	if err != nil {
		return err
	}

	drifts := make([]*metrics.EnergyDrift, len(kinds))
	e := &sim.Ensemble{
		Configs:   sim.Sweep(base, kinds...),
		Steps:     cfg.Steps(),
		KeepGoing: true,
		Metrics: func(i int) []dynamo.Metric {
			drifts[i] = metrics.NewEnergyDrift(model)
			return []dynamo.Metric{drifts[i]}
		},
	}
	outcomes, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("model: %s, dt: %g, duration: %g s\n\n", cfg.Model, cfg.Dt, cfg.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tORDER\tMAX DRIFT\tFINAL DRIFT\tSTEPS\tSTATUS")
	for i, k := range kinds {
		o := outcomes[i]
		status := "ok"
		if o.Err != nil {
			status = o.Err.Error()
		}
		steps := 0
		if o.Result != nil {
			steps = len(o.Result.Times) - 1
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%d\t%s\n",
			k, k.Info().Order, drifts[i].Value(), drifts[i].Final(), steps, status)
	}
	return w.Flush()
}

func chaosStudy(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	base, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	rep, err := analysis.ChaosStudy{Base: base, Epsilon: epsilon, Steps: cfg.Steps()}.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("model: %s, integrator: %s, epsilon: %g\n", cfg.Model, cfg.Integrator, epsilon)
	fmt.Printf("final separation: %.4e\n", rep.Divergence[len(rep.Divergence)-1])
	fmt.Printf("lyapunov estimate: %.4f 1/s\n\n", rep.Lyapunov)

	logDiv := make([]float64, 0, len(rep.Divergence))
	for _, d := range rep.Divergence {
		if d > 0 {
			logDiv = append(logDiv, math.Log10(d))
		}
	}
	if len(logDiv) > 0 {
		fmt.Println(asciigraph.Plot(logDiv,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("log10 separation of the last bob"),
		))
	}

	if outPath != "" {
		if err := plot.SaveDivergence(outPath, rep.Times, rep.Divergence); err != nil {
			return err
		}
		logger.Info("wrote plot", "file", outPath)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	base, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	if members < 1 {
		return fmt.Errorf("%w: need at least one pendulum", dynamo.ErrInvalidParameter)
	}

	links := base.Variant.Links()
	e := &sim.Ensemble{
		Configs:   sim.Butterfly(base, members, epsilon),
		Steps:     cfg.Steps(),
		Limit:     limit,
		KeepGoing: true,
		Metrics: func(i int) []dynamo.Metric {
			return []dynamo.Metric{metrics.NewFlips(links - 1)}
		},
	}
	logger.Debug("running ensemble", "members", members, "steps", cfg.Steps())
	outcomes, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}

	finalX := make([]float64, 0, len(outcomes))
	trails := make([][]physics.Point, 0, len(outcomes))
	failed, flipped := 0, 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			logger.Warn("member failed", "err", o.Err)
		}
		if o.Result == nil || len(o.Result.Positions) == 0 {
			continue
		}
		if o.Result.Metrics[fmt.Sprintf("flips%d", links)] > 0 {
			flipped++
		}
		last := o.Result.Positions[len(o.Result.Positions)-1]
		finalX = append(finalX, last[links-1].X)
		trail := make([]physics.Point, len(o.Result.Positions))
		for i, p := range o.Result.Positions {
			trail[i] = p[links-1]
		}
		trails = append(trails, trail)
	}

	fmt.Printf("model: %s, pendulums: %d, offset: %g\n", cfg.Model, members, epsilon)
	fmt.Printf("failed: %d, flipped over: %d\n\n", failed, flipped)
	if len(finalX) > 1 {
		fmt.Println(asciigraph.Plot(finalX,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("final x of the last bob per pendulum"),
		))
	}

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteTrailsSVG(f, trails, 800, 600, nil); err != nil {
			return err
		}
		logger.Info("wrote trails", "file", outPath)
	}
	return nil
}

func amplitudeSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	base, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	points, err := analysis.AmplitudeSweep(cmd.Context(), base, ampFrom, ampTo, ampPoints, cfg.Steps())
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no run completed enough oscillations; increase --time")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AMPLITUDE\tPERIOD")
	periods := make([]float64, len(points))
	for i, p := range points {
		periods[i] = p.Period
		fmt.Fprintf(w, "%.3f\t%.4f\n", p.Amplitude, p.Period)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(periods) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(periods,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("period against amplitude"),
		))
	}
	return nil
}

func dtSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	base, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	kinds, err := parseKinds(args[1:])
	if err != nil {
		return err
	}

	search := &optim.DtSearch{
		Base:    base,
		Kinds:   kinds,
		Dts:     dtList,
		Horizon: horizon,
		Budget:  budget,
	}
	choices, err := search.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("model: %s, horizon: %g s, budget: %g\n\n", cfg.Model, horizon, budget)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tDT\tDRIFT\tRESULT")
	for _, c := range choices {
		result := "within budget"
		switch {
		case c.Err != nil:
			result = c.Err.Error()
		case !c.Found:
			result = "over budget"
		}
		fmt.Fprintf(w, "%s\t%g\t%.3e\t%s\n", c.Kind, c.Dt, c.Drift, result)
	}
	return w.Flush()
}

func gridSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(gridAxes) == 0 {
		return fmt.Errorf("%w: give at least one --param", dynamo.ErrInvalidParameter)
	}

	g := optim.NewGridSearch(gridMetric)
	g.Maximize = maximize
	g.Limit = limit
	for _, s := range gridAxes {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		g.Axes = append(g.Axes, a)
	}

	reg := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		for name, v := range params {
			if err := automation.SetParam(c, name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(c, reg, gridMetric)
	}

	logger.Debug("grid search", "points", len(g.Points()), "metric", gridMetric)
	candidates, best, err := g.Search(cmd.Context(), build)
	if err != nil && !errors.Is(err, optim.ErrNoCandidate) {
		return err
	}

	fmt.Printf("model: %s, integrator: %s, metric: %s\n\n", cfg.Model, cfg.Integrator, gridMetric)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(g.Axes)+2)
	for _, a := range g.Axes {
		header = append(header, strings.ToUpper(a.Name))
	}
	header = append(header, strings.ToUpper(gridMetric), "")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, c := range candidates {
		row := make([]string, 0, len(g.Axes)+2)
		for _, a := range g.Axes {
			row = append(row, fmt.Sprintf("%g", c.Params[a.Name]))
		}
		switch {
		case c.Err != nil:
			row = append(row, "-", c.Err.Error())
		case i == best:
			row = append(row, fmt.Sprintf("%.4g", c.Value), "best")
		default:
			row = append(row, fmt.Sprintf("%.4g", c.Value), "")
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pendsim/internal/automation"
	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/experiment"
	"github.com/san-kum/pendsim/internal/storage"
	"github.com/san-kum/pendsim/internal/viz"
	"github.com/spf13/cobra"
)

// resolveConfig builds the config for a command: defaults, then a preset or
// a config file, then any flag the user actually set.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := "double_pendulum"
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Model = model
	if preset != "" {
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Model = model
		}
	}

	f := cmd.Flags()
	floats := []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"dt", &cfg.Dt, dt},
		{"time", &cfg.Duration, duration},
		{"theta", &cfg.InitState.Theta, theta},
		{"omega", &cfg.InitState.Omega, omega},
		{"theta2", &cfg.InitState.Theta2, theta2},
		{"omega2", &cfg.InitState.Omega2, omega2},
		{"l1", &cfg.L1, l1},
		{"l2", &cfg.L2, l2},
		{"m1", &cfg.M1, m1},
		{"m2", &cfg.M2, m2},
		{"g", &cfg.Gravity, gravity},
		{"tol", &cfg.Solver.Tolerance, tolerance},
	}
	for _, fl := range floats {
		if f.Changed(fl.name) {
			*fl.dst = fl.val
		}
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("max-iter") {
		cfg.Solver.MaxIter = maxIter
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), metricList...)
	if err != nil {
		return err
	}

	logger.Info("running simulation", "model", cfg.Model, "integrator", cfg.Integrator, "dt", cfg.Dt, "steps", cfg.Steps())
	start := time.Now()
	result, runErr := exp.Run(cmd.Context())
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Error("simulation stopped early", "err", runErr, "steps", result.StepsTaken)
	}

	runID, err := st.Save(storage.NewMetadata(exp.SimConfig(), result, runErr), result)
	if err != nil {
		return errors.Join(runErr, err)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tDRIFT\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%.2e\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.EnergyDrift,
			status,
		)
	}

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	r := automation.NewRunner(st, logger)
	r.KeepGoing = keepGoing
	results, err := r.RunScenario(cmd.Context(), sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tINTEG\tSTEPS\tDRIFT\tRUN")
	for _, sr := range results {
		switch {
		case sr.Sweep != nil:
			fmt.Fprintf(w, "%s\t%s\t%s\t-\t-\tsweep of %d points\n",
				sr.Name, sr.Config.Model, sr.Config.Integrator, len(sr.Sweep))
		case sr.MonteCarlo != nil:
			stable, unstable := automation.MonteCarloStats(sr.MonteCarlo)
			fmt.Fprintf(w, "%s\t%s\t%s\t-\t-\tmonte carlo: %d stable, %d unstable\n",
				sr.Name, sr.Config.Model, sr.Config.Integrator, stable, unstable)
		case sr.Result == nil:
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", sr.Name, sr.Err)
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2e\t%s\n",
				sr.Name, sr.Config.Model, sr.Config.Integrator, sr.Result.StepsTaken, sr.Result.EnergyDrift, sr.RunID)
		}
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	for _, sr := range results {
		if err := printStudy(sr); err != nil {
			return err
		}
	}
	return err
}

// printStudy prints the per-point table of a sweep or Monte Carlo step.
func printStudy(sr automation.StepResult) error {
	if sr.Sweep == nil && sr.MonteCarlo == nil {
		return nil
	}
	fmt.Printf("\n%s:\n", sr.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if sr.Sweep != nil {
		fmt.Fprintln(w, "VALUE\tMIN ENERGY\tMAX ENERGY\tFLIPS\tSTATUS")
		for _, p := range sr.Sweep {
			status := "ok"
			if p.Err != nil {
				status = p.Err.Error()
			}
			fmt.Fprintf(w, "%g\t%.4g\t%.4g\t%g\t%s\n", p.ParamValue, p.MinEnergy, p.MaxEnergy, p.Flips, status)
		}
		return w.Flush()
	}
	fmt.Fprintln(w, "TRIAL\tINITIAL STATE\tDRIFT\tSTABLE")
	for _, t := range sr.MonteCarlo {
		fmt.Fprintf(w, "%d\t%.4f\t%.2e\t%v\n", t.TrialID, []float64(t.InitState), t.Drift, t.Stable)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	name := cfg.Model
	if preset != "" {
		name += "/" + preset
	}
	m, err := viz.NewModel(simCfg, name)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		logger.Warn("simulation stopped", "err", fm.Err())
	}
	return nil
}

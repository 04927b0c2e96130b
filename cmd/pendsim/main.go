package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	dt         float64
	duration   float64
	theta      float64
	omega      float64
	theta2     float64
	omega2     float64
	l1, l2     float64
	m1, m2     float64
	gravity    float64
	integrator string
	tolerance  float64
	maxIter    int
	configFile string
	preset     string
	metricList []string

	// Phase plot axes
	xAxis int
	yAxis int
	skip  int

	epsilon    float64
	members    int
	limit      int
	budget     float64
	horizon    float64
	outPath    string
	ampFrom    float64
	ampTo      float64
	ampPoints  int
	keepGoing  bool
	imageWidth int
	dtList     []float64
	gridAxes   []string
	gridMetric string
	maximize   bool
	asCanvas   bool
)

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          "pendsim",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1).
		Background(lipgloss.Color("204")).
		Foreground(lipgloss.Color("0"))
	l.SetStyles(styles)
	return l, nil
}

// addSimFlags registers the flags that override a config.
func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	f.Float64Var(&theta, "theta", config.DefaultTheta, "initial angle of the first link")
	f.Float64Var(&omega, "omega", 0.0, "initial angular velocity of the first link")
	f.Float64Var(&theta2, "theta2", config.DefaultTheta, "initial angle of the second link")
	f.Float64Var(&omega2, "omega2", 0.0, "initial angular velocity of the second link")
	f.Float64Var(&l1, "l1", config.DefaultLength, "length of the first link")
	f.Float64Var(&l2, "l2", config.DefaultLength, "length of the second link")
	f.Float64Var(&m1, "m1", config.DefaultMass, "mass of the first bob")
	f.Float64Var(&m2, "m2", config.DefaultMass, "mass of the second bob")
	f.Float64Var(&gravity, "g", 9.81, "gravitational acceleration")
	f.StringVar(&integrator, "integrator", "rk4", "euler, leapfrog, rk4 or gauss_legendre")
	f.Float64Var(&tolerance, "tol", 1e-8, "newton tolerance (gauss_legendre)")
	f.IntVar(&maxIter, "max-iter", 50, "newton iteration cap (gauss_legendre)")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "pendsim",
		Short:         "simple and double pendulum lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := tea.NewProgram(viz.NewPicker(), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pendsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricList, "metrics", nil, "metrics to record (default: all that apply)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot angles, velocities and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", -1, "state index for y-axis (default: velocity of x-axis)")
	phaseCmd.Flags().IntVar(&skip, "skip", 1, "keep one sample every skip samples")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "period and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator...]",
		Short: "compare energy drift of integrators on the same pendulum",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	chaosCmd := &cobra.Command{
		Use:   "chaos [model]",
		Short: "follow two pendulums started epsilon apart",
		Args:  cobra.MaximumNArgs(1),
		RunE:  chaosStudy,
	}
	addSimFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&epsilon, "epsilon", 1e-5, "initial angle offset")
	chaosCmd.Flags().StringVar(&outPath, "png", "", "write the divergence plot to this file")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run a butterfly ensemble of pendulums in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&members, "n", 100, "number of pendulums")
	ensembleCmd.Flags().Float64Var(&epsilon, "offset", 1e-5, "angle offset between neighbours")
	ensembleCmd.Flags().IntVar(&limit, "parallel", 0, "pendulums run at once (0: GOMAXPROCS)")
	ensembleCmd.Flags().StringVar(&outPath, "svg", "", "write outer bob trails to this file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "measure the period against release amplitude",
		Args:  cobra.MaximumNArgs(1),
		RunE:  amplitudeSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&ampFrom, "from", 0.1, "smallest amplitude")
	sweepCmd.Flags().Float64Var(&ampTo, "to", 3.0, "largest amplitude")
	sweepCmd.Flags().IntVar(&ampPoints, "points", 15, "number of amplitudes")

	dtSearchCmd := &cobra.Command{
		Use:   "dtsearch [model] [integrator...]",
		Short: "largest dt per integrator under an energy drift budget",
		Args:  cobra.MinimumNArgs(1),
		RunE:  dtSearch,
	}
	addSimFlags(dtSearchCmd)
	dtSearchCmd.Flags().Float64Var(&budget, "budget", 1e-3, "maximum relative energy drift")
	dtSearchCmd.Flags().Float64Var(&horizon, "horizon", 10, "simulated seconds per candidate")
	dtSearchCmd.Flags().Float64SliceVar(&dtList, "candidates", []float64{0.1, 0.05, 0.02, 0.01, 0.005, 0.002, 0.001}, "step sizes to try")

	gridCmd := &cobra.Command{
		Use:   "gridsearch [model]",
		Short: "run every combination of parameter values and rank them by a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  gridSearch,
	}
	addSimFlags(gridCmd)
	gridCmd.Flags().StringArrayVar(&gridAxes, "param", nil, "searched parameter as name=v1,v2,... (repeatable)")
	gridCmd.Flags().StringVar(&gridMetric, "metric", "energy_drift", "metric to rank by")
	gridCmd.Flags().BoolVar(&maximize, "maximize", false, "rank the largest value first")
	gridCmd.Flags().IntVar(&limit, "parallel", 0, "runs at once (0: GOMAXPROCS)")

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "export energy, phase and trail plots as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	pngCmd.Flags().StringVar(&outPath, "out", ".", "output directory")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "export bob trails as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	svgCmd.Flags().IntVar(&imageWidth, "width", 800, "image width; height is 3/4 of it")
	svgCmd.Flags().BoolVar(&asCanvas, "canvas", false, "draw the trails as braille canvas dots")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models := config.Models()
			if len(args) > 0 {
				models = args
			}
			for _, model := range models {
				presets := config.ListPresets(model)
				if len(presets) == 0 {
					fmt.Printf("no presets for model: %s\n", model)
					continue
				}
				fmt.Printf("presets for %s:\n", model)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml batch of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue after a failed step")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run a simulation in the terminal; grab and throw the bobs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, compareCmd, chaosCmd, ensembleCmd,
		sweepCmd, dtSearchCmd, gridCmd, pngCmd, svgCmd, exportJSONCmd, exportCSVCmd, presetsCmd, scenarioCmd, liveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger == nil {
			logger = log.Default()
		}
		logger.Error("command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

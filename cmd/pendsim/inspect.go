package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pendsim/internal/analysis"
	"github.com/san-kum/pendsim/internal/export"
	"github.com/san-kum/pendsim/internal/plot"
	"github.com/san-kum/pendsim/internal/sim"
	"github.com/san-kum/pendsim/internal/storage"
	"github.com/spf13/cobra"
)

func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.States) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, result, nil
}

func column(result *sim.Result, idx int) []float64 {
	data := make([]float64, len(result.States))
	for i, x := range result.States {
		data[i] = x[idx]
	}
	return data
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(result.States))

	links := len(result.States[0]) / 2
	for i := 0; i < 2*links; i++ {
		caption := fmt.Sprintf("theta%d (angle)", i+1)
		if i >= links {
			caption = fmt.Sprintf("omega%d (angular velocity)", i-links+1)
		}
		fmt.Println(asciigraph.Plot(column(result, i),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}

	total := make([]float64, len(result.Energies))
	for i, e := range result.Energies {
		total[i] = e.Total
	}
	fmt.Println(asciigraph.Plot(total,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	dim := len(result.States[0])
	y := yAxis
	if y < 0 {
		y = xAxis + dim/2
	}
	if xAxis < 0 || xAxis >= dim || y >= dim {
		return fmt.Errorf("state dimension %d too small for axes %d, %d", dim, xAxis, y)
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, y)

	portrait := analysis.PhasePortrait(result, xAxis, y, skip)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(result.Times) < 2 {
		return fmt.Errorf("run %s is too short to analyze", meta.ID)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	links := len(result.States[0]) / 2
	sampleDt := result.Times[1] - result.Times[0]
	for l := 0; l < links; l++ {
		data := column(result, l)
		if period, err := analysis.Period(result.Times, data); err == nil {
			fmt.Printf("theta%d period (zero crossings): %.4f s\n", l+1, period)
		} else {
			fmt.Printf("theta%d period: %v\n", l+1, err)
		}
		if f := analysis.DominantFrequency(data, sampleDt); f > 0 {
			fmt.Printf("theta%d dominant frequency: %.4f hz (period %.4f s)\n", l+1, f, 1/f)
		}
	}
	fmt.Println()

	ps := analysis.PowerSpectrum(column(result, 0))
	plotData := ps[:max(len(ps)/4, 1)]
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (theta1)"),
	))
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	links := len(result.States[0]) / 2
	base := filepath.Join(outPath, meta.ID)

	files := []struct {
		name string
		save func(string) error
	}{
		{"energy", func(p string) error { return plot.SaveEnergy(p, result) }},
		{"phase", func(p string) error {
			return plot.SavePhase(p, analysis.PhasePortrait(result, 0, links, 1), "theta1", "omega1")
		}},
		{"trail", func(p string) error { return plot.SaveTrail(p, result.Positions) }},
		{"angles", func(p string) error {
			series := make(map[string][]float64, links)
			for l := 0; l < links; l++ {
				series[fmt.Sprintf("theta%d", l+1)] = column(result, l)
			}
			return plot.SaveSeries(p, "Angles", "t", "rad", result.Times, series)
		}},
	}
	if links > 1 {
		files = append(files, struct {
			name string
			save func(string) error
		}{"poincare", func(p string) error {
			return plot.SavePhase(p, analysis.PoincareSection(result, 0, 0, 1, 3), "theta2", "omega2")
		}})
	}
	for _, f := range files {
		path := base + "_" + f.name + ".png"
		if err := f.save(path); err != nil {
			if errors.Is(err, plot.ErrNoData) {
				logger.Warn("skipped plot", "plot", f.name, "err", err)
				continue
			}
			return fmt.Errorf("%s: %w", f.name, err)
		}
		logger.Info("wrote plot", "file", path)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	trails := export.BobTrails(result.Positions)
	if !asCanvas {
		return export.WriteTrailsSVG(w, trails, imageWidth, imageWidth*3/4, nil)
	}

	// Each braille cell is 2x4 dots drawn 4 units apart.
	const dotScale = 4
	c, err := export.RasterizeTrails(trails, imageWidth/(2*dotScale), imageWidth*3/4/(4*dotScale))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, export.CanvasToSVG(c, dotScale))
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, result)
}

package plot

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/san-kum/pendsim/internal/analysis"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrNoData = errors.New("plot: nothing to draw")

const (
	widthIn  = 8.0
	heightIn = 6.0
	dpi      = 150
)

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Padding = vg.Points(12)
	p.Y.Padding = vg.Points(12)
	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
	p.X.Tick.Marker = limitedTicker(8, "%.3g")
	p.Y.Tick.Marker = limitedTicker(8, "%.3g")
	p.Add(plotter.NewGrid())
	return p
}

func savePNG(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func xys(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

// SaveEnergy draws kinetic, potential and total energy against time.
func SaveEnergy(filename string, res *sim.Result) error {
	if res == nil || len(res.Energies) == 0 {
		return ErrNoData
	}
	ke := make([]float64, len(res.Energies))
	pe := make([]float64, len(res.Energies))
	total := make([]float64, len(res.Energies))
	for i, e := range res.Energies {
		ke[i], pe[i], total[i] = e.Kinetic, e.Potential, e.Total
	}

	p := newPlot("Energy", "time (s)", "energy")
	if err := plotutil.AddLines(p,
		"kinetic", xys(res.Times, ke),
		"potential", xys(res.Times, pe),
		"total", xys(res.Times, total),
	); err != nil {
		return err
	}
	return savePNG(p, filename)
}

// SavePhase draws a phase portrait as a scatter of points.
func SavePhase(filename string, portrait *analysis.PhasePortrait2D, xlabel, ylabel string) error {
	if portrait == nil || len(portrait.Points) == 0 {
		return ErrNoData
	}
	pts := make(plotter.XYs, len(portrait.Points))
	for i, q := range portrait.Points {
		pts[i].X, pts[i].Y = q.X, q.Y
	}

	p := newPlot("Phase portrait", xlabel, ylabel)
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Radius = vg.Points(1)
	p.Add(s)
	return savePNG(p, filename)
}

// SaveDivergence draws a separation series on a log scale. Non-positive
// samples cannot be shown and are dropped.
func SaveDivergence(filename string, times, distances []float64) error {
	pts := make(plotter.XYs, 0, len(distances))
	for i := 0; i < min(len(times), len(distances)); i++ {
		if distances[i] > 0 {
			pts = append(pts, plotter.XY{X: times[i], Y: distances[i]})
		}
	}
	if len(pts) == 0 {
		return ErrNoData
	}

	p := newPlot("Divergence of nearby starts", "time (s)", "distance")
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return savePNG(p, filename)
}

// SaveTrail draws the path of each bob. Screen coordinates grow downward,
// so y is flipped to keep the pendulum hanging down in the picture.
func SaveTrail(filename string, positions [][]physics.Point) error {
	if len(positions) == 0 || len(positions[0]) == 0 {
		return ErrNoData
	}
	bobs := len(positions[0])

	p := newPlot("Trail", "x", "y")
	var lines []interface{}
	for b := 0; b < bobs; b++ {
		pts := make(plotter.XYs, 0, len(positions))
		for _, frame := range positions {
			if b < len(frame) {
				pts = append(pts, plotter.XY{X: frame[b].X, Y: -frame[b].Y})
			}
		}
		lines = append(lines, fmt.Sprintf("bob %d", b+1), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	return savePNG(p, filename)
}

// SaveSeries draws several named series against a shared x axis, one line
// each, in name order.
func SaveSeries(filename, title, xlabel, ylabel string, xs []float64, series map[string][]float64) error {
	if len(series) == 0 || len(xs) == 0 {
		return ErrNoData
	}
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	p := newPlot(title, xlabel, ylabel)
	var lines []interface{}
	for _, name := range names {
		lines = append(lines, name, xys(xs, series[name]))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	return savePNG(p, filename)
}

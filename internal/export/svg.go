package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/viz"
)

var ErrEmptyTrail = errors.New("export: trail needs at least two points")

// DefaultColors are cycled over the trails of an SVG.
var DefaultColors = []string{"#00ffff", "#ff00ff", "#ffd700", "#00ff88"}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.PixelSize()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct {
	minX, minY, rangeX, rangeY float64
}

// fit finds a box around every point with 10% padding. Aspect ratio is kept
// so a circular swing stays circular.
func fit(trails [][]physics.Point, width, height int) bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tr := range trails {
		for _, p := range tr {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	aspect := float64(width) / float64(height)
	rangeX, rangeY := span, span
	if aspect > 1 {
		rangeX = span * aspect
	} else {
		rangeY = span / aspect
	}
	return bounds{
		minX:   (minX+maxX)/2 - rangeX/2,
		minY:   (minY+maxY)/2 - rangeY/2,
		rangeX: rangeX,
		rangeY: rangeY,
	}
}

// WriteTrailsSVG draws each trail as a path. Positions are screen
// coordinates (y grows downward) and are drawn as is.
func WriteTrailsSVG(w io.Writer, trails [][]physics.Point, width, height int, colors []string) error {
	drawable := drawableTrails(trails)
	if len(drawable) == 0 {
		return ErrEmptyTrail
	}
	if len(colors) == 0 {
		colors = DefaultColors
	}
	b := fit(drawable, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, tr := range drawable {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, colors[i%len(colors)])
		for j, p := range tr {
			x := (p.X - b.minX) / b.rangeX * float64(width)
			y := (p.Y - b.minY) / b.rangeY * float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func drawableTrails(trails [][]physics.Point) [][]physics.Point {
	var drawable [][]physics.Point
	for _, tr := range trails {
		if len(tr) >= 2 {
			drawable = append(drawable, tr)
		}
	}
	return drawable
}

// RasterizeTrails draws the trails as connected lines on a braille canvas
// of cols×rows cells, fitted the same way as WriteTrailsSVG.
func RasterizeTrails(trails [][]physics.Point, cols, rows int) (*viz.Canvas, error) {
	drawable := drawableTrails(trails)
	if len(drawable) == 0 {
		return nil, ErrEmptyTrail
	}
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("export: canvas needs at least one cell, got %dx%d", cols, rows)
	}
	c := viz.NewCanvas(cols, rows)
	w, h := c.PixelSize()
	b := fit(drawable, w, h)
	px := func(p physics.Point) (int, int) {
		return int((p.X - b.minX) / b.rangeX * float64(w-1)),
			int((p.Y - b.minY) / b.rangeY * float64(h-1))
	}
	for _, tr := range drawable {
		x0, y0 := px(tr[0])
		for _, p := range tr[1:] {
			x1, y1 := px(p)
			c.DrawLine(x0, y0, x1, y1)
			x0, y0 = x1, y1
		}
	}
	return c, nil
}

// BobTrails splits recorded frames into one trail per bob.
func BobTrails(frames [][]physics.Point) [][]physics.Point {
	if len(frames) == 0 {
		return nil
	}
	trails := make([][]physics.Point, len(frames[0]))
	for _, frame := range frames {
		for b := range trails {
			if b < len(frame) {
				trails[b] = append(trails[b], frame[b])
			}
		}
	}
	return trails
}

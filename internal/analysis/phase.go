package analysis

import (
	"strings"

	"github.com/san-kum/pendsim/internal/sim"
)

type Point2 struct{ X, Y float64 }

// PhasePortrait2D holds one projection of a trajectory onto two state
// coordinates.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point2
}

// PhasePortrait projects res onto (xIdx, yIdx), keeping one sample every
// skip samples.
func PhasePortrait(res *sim.Result, xIdx, yIdx, skip int) *PhasePortrait2D {
	if res == nil || len(res.States) == 0 {
		return nil
	}
	dim := len(res.States[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil
	}
	if skip <= 0 {
		skip = 1
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point2, 0, len(res.States)/skip+1),
	}
	for i := 0; i < len(res.States); i += skip {
		x := res.States[i]
		portrait.Points = append(portrait.Points, Point2{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// PhasePortraitToASCII renders the portrait on a width×height character
// grid with axes where they cross the visible area.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records (recordX, recordY) each time coordinate crossIdx
// rises through threshold, interpolated to the crossing.
func PoincareSection(res *sim.Result, crossIdx int, threshold float64, recordX, recordY int) *PhasePortrait2D {
	if res == nil || len(res.States) == 0 {
		return nil
	}
	dim := len(res.States[0])
	if crossIdx >= dim || recordX >= dim || recordY >= dim {
		return nil
	}

	section := &PhasePortrait2D{XIndex: recordX, YIndex: recordY}
	for i := 1; i < len(res.States); i++ {
		prev, curr := res.States[i-1], res.States[i]
		if prev[crossIdx] < threshold && curr[crossIdx] >= threshold {
			frac := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
			section.Points = append(section.Points, Point2{
				X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
			})
		}
	}
	return section
}

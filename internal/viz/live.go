package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 400
	nudgeStep       = 0.05
	maxSpeed        = 32

	// the canvas style pads one row and two columns
	padRows = 1
	padCols = 2
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is a live terminal view of one simulation. Keys and the mouse drive
// the grab/release state machine of the simulation.
type Model struct {
	cfg   sim.Config
	name  string
	sim   *sim.Simulation
	trail *sim.Trail

	canvas        *Canvas
	width, height int
	scale         float64

	running       bool
	stepsPerFrame int
	bob           int
	tracker       *sim.ThrowTracker
	energy        []float64
	initialEnergy float64
	err           error

	theme    Theme
	st       styles
	showHelp bool
	now      func() time.Time
}

// NewModel builds the simulation described by cfg and a view around it.
func NewModel(cfg sim.Config, name string) (Model, error) {
	s, err := sim.New(cfg)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		cfg:           cfg,
		name:          name,
		sim:           s,
		trail:         sim.NewTrail(trailCapacity),
		canvas:        NewCanvas(width, height),
		width:         width,
		height:        height,
		running:       true,
		stepsPerFrame: 1,
		bob:           s.Links() - 1,
		tracker:       sim.NewThrowTracker(),
		energy:        make([]float64, 0, historyCapacity),
		theme:         Themes[0],
		st:            newStyles(Themes[0]),
		now:           time.Now,
	}
	m.scale = m.fitScale()
	m.initialEnergy = s.Energy().Total
	m.record()
	return m, nil
}

// Simulation exposes the driven simulation for inspection.
func (m Model) Simulation() *sim.Simulation { return m.sim }

func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.reset()
	case "tab":
		if m.sim.Mode() == sim.Integrating {
			m.bob = (m.bob + 1) % m.sim.Links()
		}
	case "g", "enter":
		if m.sim.Mode() == sim.ManuallyPositioned {
			m.release()
		} else {
			m.grab()
		}
	case "left", "h":
		m.nudge(-nudgeStep)
	case "right", "l":
		m.nudge(nudgeStep)
	case "+", "=":
		if m.stepsPerFrame < maxSpeed {
			m.stepsPerFrame *= 2
		}
	case "-", "_":
		if m.stepsPerFrame > 1 {
			m.stepsPerFrame /= 2
		}
	case "t":
		m.theme = nextTheme(m.theme)
		m.st = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return
	}
	pointer := m.fromCell(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		m.bob = m.nearestBob(pointer)
		m.tracker.Reset()
		m.drag(pointer)
	case tea.MouseActionMotion:
		if m.sim.Mode() == sim.ManuallyPositioned {
			m.drag(pointer)
		}
	case tea.MouseActionRelease:
		if m.sim.Mode() == sim.ManuallyPositioned {
			m.release()
		}
	}
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.sim.Step(); err != nil {
			m.err = err
			m.running = false
			break
		}
	}
	m.record()
}

func (m *Model) record() {
	pos := m.sim.Positions()
	m.trail.Push(pos[len(pos)-1])
	m.energy = append(m.energy, m.sim.Energy().Total)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// grab pins the selected bob where it is.
func (m *Model) grab() {
	m.tracker.Reset()
	if err := m.sim.SetManualAngle(m.bob, m.sim.State()[m.bob]); err != nil {
		m.err = err
		return
	}
	m.tracker.Record(m.sim.Positions()[m.bob], m.now())
}

// nudge turns the selected bob by d radians, grabbing it first if needed.
func (m *Model) nudge(d float64) {
	if m.sim.Mode() != sim.ManuallyPositioned {
		m.grab()
	}
	if err := m.sim.SetManualAngle(m.bob, m.sim.State()[m.bob]+d); err != nil {
		m.err = err
		return
	}
	m.tracker.Record(m.sim.Positions()[m.bob], m.now())
	m.trail.Reset()
}

func (m *Model) drag(pointer physics.Point) {
	if err := m.sim.DragTo(m.bob, pointer); err != nil {
		m.err = err
		return
	}
	m.tracker.Record(pointer, m.now())
	m.trail.Reset()
}

func (m *Model) release() {
	if err := m.sim.Throw(m.bob, m.tracker); err != nil {
		m.err = err
		return
	}
	m.initialEnergy = m.sim.Energy().Total
	m.energy = m.energy[:0]
	m.record()
}

// reset rebuilds the simulation from its configuration.
func (m *Model) reset() {
	s, err := sim.New(m.cfg)
	if err != nil {
		m.err = err
		return
	}
	m.sim = s
	m.err = nil
	m.running = true
	m.tracker.Reset()
	m.trail.Reset()
	m.energy = m.energy[:0]
	m.initialEnergy = s.Energy().Total
	m.record()
}

func (m Model) fitScale() float64 {
	p := m.sim.Params()
	reach := p.L1
	if m.sim.Links() > 1 {
		reach += p.L2
	}
	cw, ch := m.canvas.PixelSize()
	half := float64(min(cw, ch))/2 - 3
	return half / reach
}

func (m Model) centre() (int, int) {
	cw, ch := m.canvas.PixelSize()
	return cw / 2, ch / 2
}

// toCanvas maps a world point to canvas dots, keeping the pivot centred.
func (m Model) toCanvas(p physics.Point) (int, int) {
	o := m.sim.Params().Origin
	cx, cy := m.centre()
	return cx + int(math.Round((p.X-o.X)*m.scale)), cy + int(math.Round((p.Y-o.Y)*m.scale))
}

// fromCell maps a terminal cell back to world coordinates.
func (m Model) fromCell(col, row int) physics.Point {
	o := m.sim.Params().Origin
	cx, cy := m.centre()
	x := (col-padCols)*2 + 1
	y := (row-padRows)*4 + 2
	return physics.Point{
		X: o.X + float64(x-cx)/m.scale,
		Y: o.Y + float64(y-cy)/m.scale,
	}
}

func (m Model) nearestBob(p physics.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i, b := range m.sim.Positions() {
		if d := math.Hypot(b.X-p.X, b.Y-p.Y); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (m *Model) draw() {
	m.canvas.Clear()

	// older half of the trail is drawn sparse so it fades out
	pts := m.trail.Points()
	for i, p := range pts {
		if i < len(pts)/2 && i%3 != 0 {
			continue
		}
		x, y := m.toCanvas(p)
		m.canvas.Set(x, y)
	}

	px, py := m.toCanvas(m.sim.Params().Origin)
	m.canvas.Disc(px, py, 1)
	for i, b := range m.sim.Positions() {
		bx, by := m.toCanvas(b)
		m.canvas.DrawLine(px, py, bx, by)
		r := 1
		if i == m.bob {
			r = 2
		}
		m.canvas.Disc(bx, by, r)
		px, py = bx, by
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.err.Render("FAILED")
	case m.sim.Mode() == sim.ManuallyPositioned:
		return m.st.warn.Render(fmt.Sprintf("HOLDING BOB %d", m.bob+1))
	case !m.running:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

func (m Model) drift() float64 {
	e := m.sim.Energy().Total
	if m.initialEnergy == 0 {
		return math.Abs(e)
	}
	return math.Abs((e - m.initialEnergy) / m.initialEnergy)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := m.st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	x := m.sim.State()
	links := m.sim.Links()
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Integrator", m.sim.Kind().String())
	row("Speed", fmt.Sprintf("%dx", m.stepsPerFrame))
	for i := 0; i < links; i++ {
		line := fmt.Sprintf("θ %+.3f  ω %+.3f", x[i], x[links+i])
		if i == m.bob {
			s.WriteString(m.st.active.Render(fmt.Sprintf("> bob %d    ", i+1)) + m.st.value.Render(line) + "\n")
		} else {
			row(fmt.Sprintf("  bob %d", i+1), line)
		}
	}
	e := m.sim.Energy()
	row("Energy", fmt.Sprintf("%.4g", e.Total))
	row("Drift", fmt.Sprintf("%.2e", m.drift()))
	if m.sim.Kind() == integrators.KindGaussLegendre {
		row("Newton", fmt.Sprintf("%d it", m.sim.SolverIterations()))
	}
	if m.err != nil {
		s.WriteString("\n" + m.st.err.Render(m.err.Error()) + "\n")
	}
	s.WriteString(m.st.help.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nG:Grab/Release ←→:Nudge\nTab:Bob +-:Speed ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
  Space      pause or resume
  R          rebuild from the starting state
  Q          quit
  Tab        select the other bob
  G / Enter  grab the selected bob, or release it
  ← →        turn the held bob; the motion is thrown on release
  mouse      press on a bob, drag, release to throw
  + -        steps per frame
  T          cycle themes
  ?          toggle this help`

package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pendsim/internal/config"
)

type entry struct {
	model, preset string
}

func (e entry) String() string { return e.model + "/" + e.preset }

// Picker is a menu of presets. Choosing one swaps the program over to a
// live Model of it.
type Picker struct {
	entries []entry
	cursor  int
	err     error
}

func NewPicker() Picker {
	var entries []entry
	for _, model := range config.Models() {
		for _, preset := range config.ListPresets(model) {
			entries = append(entries, entry{model: model, preset: preset})
		}
	}
	return Picker{entries: entries}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.entries) == 0 {
			return p, nil
		}
		live, err := p.start(p.entries[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		return live, live.Init()
	}
	return p, nil
}

func (p Picker) start(e entry) (Model, error) {
	cfg := config.GetPreset(e.model, e.preset)
	if cfg == nil {
		return Model{}, fmt.Errorf("unknown preset %s", e)
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return Model{}, err
	}
	return NewModel(simCfg, e.String())
}

func (p Picker) View() string {
	var (
		b      strings.Builder
		title  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
		sub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
		cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
		chosen = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
		dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
		key    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	)
	b.WriteString("\n\n    " + title.Render("PENDSIM") + "\n    " + sub.Render("pendulum presets") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, e := range p.entries {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", cursor.Render("▸"), chosen.Render(e.String())))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", dim.Render(e.String())))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + dim.Render(" navigate  ") + key.Render("enter") + dim.Render(" start  ") + key.Render("q") + dim.Render(" quit") + "\n")
	return b.String()
}

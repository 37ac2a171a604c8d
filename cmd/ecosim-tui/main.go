// Command ecosim-tui is the reference terminal presenter for the
// spatial-ecology tick core (spec §6 external interface #5: a read-only
// State Projection consumer). It polls Simulation.Step on a fixed wall-clock
// cadence and renders the latest snapshot — it never mutates simulation
// state directly, per the Read-Only State Projections contract (C15).
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GoCodeAlone/ecotick/internal/config"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/shell"
	"github.com/GoCodeAlone/ecotick/internal/simcore"
	"github.com/GoCodeAlone/ecotick/internal/simlog"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config overriding the embedded defaults")
		seed       = flag.Int64("seed", 1, "deterministic RNG seed")
		worldMinX  = flag.Int("world-min-x", -64, "terrain grid min X")
		worldMinY  = flag.Int("world-min-y", -64, "terrain grid min Y")
		worldMaxX  = flag.Int("world-max-x", 64, "terrain grid max X")
		worldMaxY  = flag.Int("world-max-y", 64, "terrain grid max Y")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	terrain := shell.NewGridTerrain(int32(*worldMinX), int32(*worldMinY), int32(*worldMaxX), int32(*worldMaxY), *seed)
	logger := simlog.Discard()
	sim := simcore.New(cfg, terrain, *seed, logger)

	p := tea.NewProgram(initialModel(sim, float64(cfg.BaseTickMS)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("running TUI: %v", err)
	}
}

type tickMsg time.Time

func doTick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var keys = struct {
	quit  key.Binding
	space key.Binding
	enter key.Binding
	view  key.Binding
	left  key.Binding
	right key.Binding
	up    key.Binding
	down  key.Binding
	reset key.Binding
}{
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	space: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "step one tick")),
	view:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle view")),
	left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset view")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// model is the bubbletea Model driving the presenter loop: poll
// Simulation.Step, pull a read-only snapshot, render it. It never reaches
// into sim internals beyond the public snapshot/query API.
type model struct {
	sim *simcore.Simulation

	width, height int
	paused        bool
	selectedView  string
	viewModes     []string

	viewportX, viewportY int32
	cellSize             int32
	baseTickMS           float64

	lastTick time.Time
}

func initialModel(sim *simcore.Simulation, baseTickMS float64) model {
	return model{
		sim:          sim,
		selectedView: "grid",
		viewModes:    []string{"grid", "stats", "alerts"},
		cellSize:     2,
		baseTickMS:   baseTickMS,
		lastTick:     time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return doTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.space):
			m.paused = !m.paused
			if m.paused {
				m.sim.Pause()
			} else {
				m.sim.Resume()
			}
		case key.Matches(msg, keys.enter):
			if m.paused {
				m.sim.Resume()
				m.sim.Step(m.baseTickMS)
				m.sim.Pause()
			} else {
				m.sim.Step(m.baseTickMS)
			}
		case key.Matches(msg, keys.view):
			for i, v := range m.viewModes {
				if v == m.selectedView {
					m.selectedView = m.viewModes[(i+1)%len(m.viewModes)]
					break
				}
			}
		case key.Matches(msg, keys.left):
			m.viewportX -= 4
		case key.Matches(msg, keys.right):
			m.viewportX += 4
		case key.Matches(msg, keys.up):
			m.viewportY -= 4
		case key.Matches(msg, keys.down):
			m.viewportY += 4
		case key.Matches(msg, keys.reset):
			m.viewportX, m.viewportY = 0, 0
		}

	case tickMsg:
		if !m.paused {
			now := time.Now()
			m.sim.Step(float64(now.Sub(m.lastTick).Milliseconds()))
			m.lastTick = now
		}
		cmd = doTick()
	}

	return m, cmd
}

func (m model) View() string {
	header := m.headerView()
	footer := m.footerView()

	var content string
	switch m.selectedView {
	case "stats":
		content = m.statsView()
	case "alerts":
		content = m.alertsView()
	default:
		content = m.gridView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m model) headerView() string {
	h := m.sim.SnapshotHealth()
	status := "running"
	if m.paused {
		status = "paused"
	}
	return titleStyle.Render(fmt.Sprintf("ecosim-tui  tick=%d  %s  tps=%.1f  healthy=%v",
		m.sim.CurrentTick(), status, h.CurrentTPS, h.IsHealthy))
}

func (m model) footerView() string {
	return infoStyle.Render("q quit · space pause/resume · enter step · v cycle view · hjkl/arrows pan · r reset")
}

const (
	gridViewWidth  = 60
	gridViewHeight = 24
)

// gridView renders a coarse ASCII map of live entities over their current
// position, one glyph per species (reference presenter; richer shells are
// free to bucket by LOD tier or render biomass heat instead).
func (m model) gridView() string {
	entities := m.sim.SnapshotEntities()

	cells := make(map[[2]int32]rune, len(entities))
	glyphs := make(map[string]rune)
	next := 'A'
	for _, e := range entities {
		g, ok := glyphs[e.Species]
		if !ok {
			g = next
			glyphs[e.Species] = g
			next++
		}
		col := (e.Position.X - m.viewportX) / m.cellSize
		row := (e.Position.Y - m.viewportY) / m.cellSize
		if col >= 0 && col < gridViewWidth && row >= 0 && row < gridViewHeight {
			cells[[2]int32{col, row}] = g
		}
	}

	var b strings.Builder
	for row := int32(0); row < gridViewHeight; row++ {
		for col := int32(0); col < gridViewWidth; col++ {
			if g, ok := cells[[2]int32{col, row}]; ok {
				b.WriteRune(g)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}

	legend := make([]string, 0, len(glyphs))
	for species, g := range glyphs {
		legend = append(legend, fmt.Sprintf("%c=%s", g, species))
	}
	sort.Strings(legend)

	return gridStyle.Render(b.String() + "\n" + strings.Join(legend, "  "))
}

func (m model) statsView() string {
	entities := m.sim.SnapshotEntities()
	counts := make(map[string]int)
	var totalHunger, totalThirst, totalEnergy float64
	for _, e := range entities {
		counts[e.Species]++
		totalHunger += e.Hunger
		totalThirst += e.Thirst
		totalEnergy += e.Energy
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "population: %d\n", len(entities))
	for _, name := range names {
		fmt.Fprintf(&b, "  %-16s %d\n", name, counts[name])
	}
	if len(entities) > 0 {
		n := float64(len(entities))
		fmt.Fprintf(&b, "\navg hunger=%.1f thirst=%.1f energy=%.1f\n", totalHunger/n, totalThirst/n, totalEnergy/n)
	}

	biomass := m.sim.BiomassChunkAggregate(geom.Position{X: m.viewportX, Y: m.viewportY}.Chunk())
	fmt.Fprintf(&b, "\nbiomass (viewport chunk): %.1f\n", biomass)

	return gridStyle.Render(b.String())
}

func (m model) alertsView() string {
	alerts := m.sim.RecentAlerts()
	if len(alerts) == 0 {
		return gridStyle.Render("no recent alerts")
	}

	var b strings.Builder
	for i := len(alerts) - 1; i >= 0 && len(alerts)-1-i < 20; i-- {
		a := alerts[i]
		b.WriteString(alertStyle.Render(fmt.Sprintf("[tick %d] %v: %s", a.Tick, a.Kind, a.Note)))
		b.WriteByte('\n')
	}
	return gridStyle.Render(b.String())
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/vifei/types"
)

// ViewModel renders a vifei ViewModel: the same payload the JSON and
// human-text output paths use, just styled.
type ViewModel struct {
	vm         types.ViewModel
	digest     string
	eventCount int
	profile    string
	width      int
	height     int
	quitting   bool
}

// NewViewModel builds a view model for the TUI from the projected
// ViewModel, its digest, and the source event count.
func NewViewModel(vm types.ViewModel, digest string, eventCount int, profile string) ViewModel {
	return ViewModel{vm: vm, digest: digest, eventCount: eventCount, profile: profile}
}

// Init implements tea.Model.
func (m ViewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, viewKeys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ViewModel) View() string {
	if m.quitting {
		return ""
	}
	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return m.render() + "\n" + help
}

func (m ViewModel) render() string {
	var b strings.Builder
	b.WriteString(showcaseTitle("Run View", m.profile))
	b.WriteString("\n\n")

	level := string(m.vm.DegradationLevel)
	writeRow(&b, "Ladder Level", ladderStyle(level).Render(level))
	writeRow(&b, "Aggregation Mode", ValueStyle.Render(string(m.vm.AggregationMode)))
	if m.vm.AggregationBinSize != nil {
		writeRow(&b, "Aggregation Bin Size", ValueStyle.Render(fmt.Sprintf("%d", *m.vm.AggregationBinSize)))
	}
	writeRow(&b, "Queue Pressure", renderPressureMeter(m.vm.QueuePressure))

	safety := string(m.vm.ExportSafetyState)
	writeRow(&b, "Export Safety", exportSafetyStyle(safety).Render(safety))
	writeRow(&b, "Event Count", ValueStyle.Render(fmt.Sprintf("%d", m.vm.EventCount)))
	writeRow(&b, "Tier A Drops", ValueStyle.Render(fmt.Sprintf("%d", m.vm.TierADrops)))
	writeRow(&b, "Source Events", ValueStyle.Render(fmt.Sprintf("%d", m.eventCount)))
	writeRow(&b, "ViewModel Hash", ValueStyle.Render(m.digest))

	if len(m.vm.Transitions) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Transitions"))
		b.WriteString("\n")
		for _, t := range m.vm.Transitions {
			b.WriteString(fmt.Sprintf("  %s %s -> %s (%s)\n",
				LabelStyle.Render("•"),
				ladderStyle(string(t.FromLevel)).Render(string(t.FromLevel)),
				ladderStyle(string(t.ToLevel)).Render(string(t.ToLevel)),
				t.Trigger))
		}
	}

	return BoxStyle.Render(b.String())
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(label+":"), value))
}

// renderPressureMeter draws a fixed-width bar gauge for queue pressure,
// clamped to [0, 1] for display purposes only (the underlying value is
// never clamped or altered).
func renderPressureMeter(pressure float64) string {
	const width = 20
	clamped := pressure
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 1 {
		clamped = 1
	}
	filled := int(clamped * float64(width))
	bar := MeterFillStyle.Render(strings.Repeat("█", filled)) +
		MeterEmptyStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %.3f", bar, pressure)
}

type viewKeyMap struct {
	Quit key.Binding
}

var viewKeys = viewKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunViewTUI runs the interactive view TUI until the user quits.
func RunViewTUI(vm types.ViewModel, digest string, eventCount int, profile string) error {
	model := NewViewModel(vm, digest, eventCount, profile)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderViewStatic renders the view without launching the interactive
// program, used for --human output and for piped/non-terminal sessions.
func RenderViewStatic(vm types.ViewModel, digest string, eventCount int, profile string) string {
	model := NewViewModel(vm, digest, eventCount, profile)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.render())
}

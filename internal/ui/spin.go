package ui

import (
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type spinDoneMsg struct{}

type spinModel struct {
	spinner spinner.Model
	label   string
}

func (m spinModel) Init() tea.Cmd { return m.spinner.Tick }

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinDoneMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinModel) View() string {
	return "  " + m.spinner.View() + " " + m.label
}

// Spin runs fn while showing an indeterminate spinner labelled label.
// When stdout is not a terminal the spinner is omitted and fn runs
// directly.
func Spin(label string, fn func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fn()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(DefaultStyles().AccentColor)

	p := tea.NewProgram(spinModel{spinner: sp, label: label})

	done := make(chan error, 1)
	go func() {
		done <- fn()
		p.Send(spinDoneMsg{})
	}()

	// A display failure must not lose fn's outcome.
	_, _ = p.Run()
	return <-done
}

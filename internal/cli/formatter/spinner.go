package formatter

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return "  " + m.spinner.View() + " " + Dim(m.message)
}

// RunWithSpinner runs fn while a spinner animates on w. The spinner line is
// cleared when fn returns. If the spinner program stops early, for example
// on an interrupt, fn's context is cancelled and RunWithSpinner waits for
// it to return.
func RunWithSpinner(ctx context.Context, w io.Writer, message string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StylePurple)),
		message: message,
	}
	p := tea.NewProgram(model, tea.WithOutput(w), tea.WithInput(nil), tea.WithContext(ctx))

	errc := make(chan error, 1)
	go func() {
		errc <- fn(ctx)
		p.Send(spinnerDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
	}
	return <-errc
}

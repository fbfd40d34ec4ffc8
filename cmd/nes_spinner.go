package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/ff1c/internal/domain"
)

const bridgeWaitLabel = "Waiting for the emulator bridge..."

type bridgeWaitDoneMsg struct {
	err error
}

type bridgeStatusMsg struct {
	status domain.BridgeStatus
}

type bridgeWaitSpinnerModel struct {
	spinner spinner.Model
	label   string
	wait    tea.Cmd
	err     error
	done    bool
}

func newBridgeWaitSpinnerModel(wait tea.Cmd) bridgeWaitSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return bridgeWaitSpinnerModel{
		spinner: s,
		label:   bridgeWaitLabel,
		wait:    wait,
	}
}

func (m bridgeWaitSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m bridgeWaitSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case bridgeStatusMsg:
		m.label = fmt.Sprintf("%s (%s)", bridgeWaitLabel, msg.status.Text)
		return m, nil
	case bridgeWaitDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m bridgeWaitSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runBridgeWaitSpinner shows a spinner while wait runs. Status updates passed
// to progress are shown next to the label.
func runBridgeWaitSpinner(ctx context.Context, output io.Writer, wait func(context.Context, func(domain.BridgeStatus)) error) error {
	var p *tea.Program

	progress := func(status domain.BridgeStatus) {
		go p.Send(bridgeStatusMsg{status: status})
	}
	waitCmd := func() tea.Msg {
		return bridgeWaitDoneMsg{err: wait(ctx, progress)}
	}

	p = tea.NewProgram(
		newBridgeWaitSpinnerModel(waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(bridgeWaitSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}

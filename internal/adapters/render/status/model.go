package status

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/ff1c/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	status domain.BridgeStatus
	opts   RenderOptions
	styles styles
	output string
}

func newModel(status domain.BridgeStatus, opts RenderOptions) model {
	return model{
		status: status,
		opts:   opts,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.status, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws the bridge status block once and returns it.
func Render(status domain.BridgeStatus, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(status, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}

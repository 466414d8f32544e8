package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/haloguard/haloguard-cli/internal/domain"
)

var (
	progressOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	progressOfflineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	progressFailedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	progressMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type detectionDoneMsg struct {
	result domain.DetectionResult
	err    error
}

// detectProgressModel shows a spinner with elapsed time while a detection
// runs. Its last frame says where the result came from.
type detectProgressModel struct {
	spinner  spinner.Model
	filename string
	detect   tea.Cmd
	now      func() time.Time
	started  time.Time
	elapsed  time.Duration

	result domain.DetectionResult
	err    error
	done   bool
}

func newDetectProgressModel(filename string, now func() time.Time, detect tea.Cmd) detectProgressModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return detectProgressModel{
		spinner:  s,
		filename: filename,
		detect:   detect,
		now:      now,
		started:  now(),
	}
}

func (m detectProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.detect)
}

func (m detectProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.elapsed = m.now().Sub(m.started)
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case detectionDoneMsg:
		m.elapsed = m.now().Sub(m.started)
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m detectProgressModel) View() string {
	elapsed := progressMutedStyle.Render(fmt.Sprintf("(%.1fs)", m.elapsed.Seconds()))

	if !m.done {
		return fmt.Sprintf("%s Analyzing %s... %s", m.spinner.View(), m.filename, elapsed)
	}

	switch {
	case m.err != nil:
		return progressFailedStyle.Render(fmt.Sprintf("x %s: analysis stopped", m.filename)) + " " + elapsed + "\n"
	case m.result.Source == domain.SourceFallback:
		return progressOfflineStyle.Render(fmt.Sprintf("! %s: backend unreachable, result synthesized locally", m.filename)) + " " + elapsed + "\n"
	default:
		model := m.result.ModelVersion
		if model == "" {
			model = "unknown model"
		}
		return progressOKStyle.Render(fmt.Sprintf("v %s analyzed by backend (%s)", m.filename, model)) + " " + elapsed + "\n"
	}
}

// runDetectProgress runs detect while rendering progress on output.
func runDetectProgress(ctx context.Context, output io.Writer, filename string, now func() time.Time, detect func(context.Context) (domain.DetectionResult, error)) (domain.DetectionResult, error) {
	detectCmd := func() tea.Msg {
		result, err := detect(ctx)
		return detectionDoneMsg{result: result, err: err}
	}

	p := tea.NewProgram(
		newDetectProgressModel(filename, now, detectCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return domain.DetectionResult{}, err
	}

	final, ok := finalModel.(detectProgressModel)
	if !ok {
		return domain.DetectionResult{}, fmt.Errorf("unexpected final progress model type %T", finalModel)
	}

	return final.result, final.err
}

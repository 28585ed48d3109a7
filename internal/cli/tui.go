package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/pipeline"
)

// Progress view styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	doneLineStyle = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
)

// =============================================================================
// ProgressModel - Interactive pipeline progress
// =============================================================================

// statusMsg carries a pipeline status event into the model.
type statusMsg pipeline.Status

// doneMsg carries the pipeline outcome into the model.
type doneMsg struct {
	result *pipeline.Result
	err    error
}

// ProgressModel is the bubbletea model that shows a pipeline run: a bar for
// the overall percentage, the current message and the messages of the
// stages already passed.
type ProgressModel struct {
	Title   string
	Current pipeline.Status
	History []string
	Width   int

	Result     *pipeline.Result
	Err        error
	Done       bool
	Cancelling bool

	cancel context.CancelFunc
}

// NewProgressModel creates a progress model. cancel is called when the
// user asks to quit; the run stops at the next stage boundary.
func NewProgressModel(title string, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{Title: title, Width: defaultBarWidth, cancel: cancel}
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		if m.Current.Message != "" && m.Current.Stage != msg.Stage {
			m.History = append(m.History, m.Current.Message)
		}
		m.Current = pipeline.Status(msg)
	case doneMsg:
		m.Result, m.Err, m.Done = msg.result, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.Cancelling && m.cancel != nil {
				m.cancel()
			}
			m.Cancelling = true
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width - 10
		if m.Width > defaultBarWidth {
			m.Width = defaultBarWidth
		}
		if m.Width < minBarWidth {
			m.Width = minBarWidth
		}
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")

	for _, line := range m.History {
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + doneLineStyle.Render(line) + "\n")
	}

	switch {
	case m.Done && m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + StyleError.Render(errors.UserMessage(m.Err)) + "\n")
	case m.Current.Message != "":
		b.WriteString(styleIconSpinner.Render(iconInfo) + " " + m.Current.Message + "\n")
	}

	b.WriteString("\n")
	b.WriteString(renderBar(m.Current.Percent, m.Width))
	b.WriteString(fmt.Sprintf(" %3d%%\n", m.Current.Percent))

	if m.Cancelling && !m.Done {
		b.WriteString(StyleDim.Render("cancelling after the current stage..."))
	} else if !m.Done {
		b.WriteString(StyleDim.Render("q: cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderBar draws a width-character bar filled to percent.
func renderBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	full := width * percent / 100
	return barFullStyle.Render(strings.Repeat("█", full)) +
		barEmptyStyle.Render(strings.Repeat("░", width-full))
}

// =============================================================================
// Runner
// =============================================================================

// runWithProgress executes the pipeline on a single goroutine while the
// progress view renders its status events on stderr.
func runWithProgress(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel("psdlayout · "+opts.PSDPath, cancel), tea.WithOutput(os.Stderr))
	opts.OnStatus = func(s pipeline.Status) { p.Send(statusMsg(s)) }

	go func() {
		result, err := runner.Execute(ctx, opts)
		p.Send(doneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m := final.(ProgressModel)
	if !m.Done {
		return nil, context.Canceled
	}
	return m.Result, m.Err
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/render"
)

// ErrCancelled is returned by RunTask when the user pressed ctrl+c.
var ErrCancelled = errors.New("cancelled")

const barWidth = 24

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	barFullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	barDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TaskFunc runs one backend task to completion, reporting every status
// reply to progress.
type TaskFunc func(ctx context.Context, progress func(model.TaskStatus)) error

type progressMsg struct {
	status model.TaskStatus
}

type taskDoneMsg struct {
	err error
}

type loaderModel struct {
	kind    string
	spinner spinner.Model
	status  model.TaskStatus
	cancel  context.CancelFunc
	err     error
	done    bool
}

func newLoaderModel(kind string, cancel context.CancelFunc) loaderModel {
	return loaderModel{
		kind:    kind,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		status:  model.TaskStatus{State: model.TaskPending},
		cancel:  cancel,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.status = msg.status
		return m, nil
	case taskDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	line := render.StatusLine(m.kind, m.status)
	if m.status.Total > 0 {
		line += "  " + progressBar(m.status.Progress(), barWidth)
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), line)
}

// progressBar draws p in [0,1] as a bar of width cells plus a percentage.
func progressBar(p float64, width int) string {
	full := int(p*float64(width) + 0.5)
	full = clamp(full, 0, width)
	return barFullStyle.Render(strings.Repeat("█", full)) +
		barDimStyle.Render(strings.Repeat("─", width-full)) +
		fmt.Sprintf(" %3.0f%%", p*100)
}

// RunTask shows a spinner with live progress while fn runs. It renders
// inline (no alt screen). ctrl+c cancels the context handed to fn.
func RunTask(ctx context.Context, kind string, fn TaskFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newLoaderModel(kind, cancel), tea.WithContext(ctx))
	go func() {
		err := fn(ctx, func(s model.TaskStatus) { p.Send(progressMsg{status: s}) })
		p.Send(taskDoneMsg{err: err})
	}()

	result, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	final, ok := result.(loaderModel)
	if !ok || !final.done {
		return ErrCancelled
	}
	return final.err
}

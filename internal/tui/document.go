package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobseeker/internal/document"
)

// docOpMsg is sent when an editor operation finishes.
type docOpMsg struct {
	op  string
	err error
}

// editedMsg is sent when the external editor exits.
type editedMsg struct {
	path     string
	original string
	err      error
}

type documentModel struct {
	ctx    context.Context
	editor *document.Editor

	viewport viewport.Model
	width    int
	height   int
	ready    bool

	busy      bool
	notice    string
	noticeErr bool
}

func newDocumentModel(ctx context.Context, e *document.Editor) documentModel {
	return documentModel{ctx: ctx, editor: e, busy: true}
}

func (m documentModel) Init() tea.Cmd {
	return m.viewCmd()
}

func (m documentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(m.width-4, 20)
		m.viewport.Height = max(m.height-4, 5)
		if !m.ready {
			m.viewport.SetContent(m.editor.Content())
			m.ready = true
		}
		return m, nil

	case docOpMsg:
		m.busy = false
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		} else if msg.op != "view" {
			m.setNotice(msg.op+" done", false)
		}
		m.viewport.SetContent(m.editor.Content())
		// Saving and switching an unloaded editor leave nothing to show.
		if msg.err == nil && msg.op != "view" && m.editor.Content() == "" {
			m.busy = true
			return m, m.viewCmd()
		}
		return m, nil

	case editedMsg:
		data, readErr := os.ReadFile(msg.path)
		_ = os.Remove(msg.path)
		switch {
		case msg.err != nil:
			m.setNotice(fmt.Sprintf("editor: %v", msg.err), true)
		case readErr != nil:
			m.setNotice(fmt.Sprintf("reading edited source: %v", readErr), true)
		case string(data) == msg.original:
			m.setNotice("no changes", false)
		default:
			content := string(data)
			m.busy = true
			return m, m.opCmd("save", func(ctx context.Context) error {
				return m.editor.Save(ctx, content)
			})
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m documentModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k", "down", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "tab":
		next := document.CoverLetter
		if m.editor.Context() == document.CoverLetter {
			next = document.Resume
		}
		m.busy = true
		return m, m.opCmd("switch", func(ctx context.Context) error {
			return m.editor.SwitchContext(ctx, next)
		})
	case "r":
		m.busy = true
		return m, m.opCmd("refresh", func(ctx context.Context) error {
			_, err := m.editor.Refresh(ctx)
			return err
		})
	case "c":
		m.busy = true
		return m, m.opCmd("recompile", m.editor.Recompile)
	case "X":
		m.busy = true
		return m, m.opCmd("reset", func(ctx context.Context) error {
			_, err := m.editor.Reinitialize(ctx)
			return err
		})
	case "e":
		return m.edit()
	}
	return m, nil
}

// edit hands the loaded resume source to $VISUAL or $EDITOR.
func (m documentModel) edit() (tea.Model, tea.Cmd) {
	if m.editor.Context() != document.Resume {
		m.setNotice("the cover letter is read-only", true)
		return m, nil
	}
	original := m.editor.Content()
	if original == "" {
		m.setNotice("nothing loaded to edit", true)
		return m, nil
	}

	f, err := os.CreateTemp("", "resume-*.tex")
	if err != nil {
		m.setNotice(fmt.Sprintf("temp file: %v", err), true)
		return m, nil
	}
	path := f.Name()
	_, err = f.WriteString(original)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		m.setNotice(fmt.Sprintf("temp file: %v", err), true)
		return m, nil
	}

	return m, tea.ExecProcess(editorCommand(path), func(err error) tea.Msg {
		return editedMsg{path: path, original: original, err: err}
	})
}

func editorCommand(path string) *exec.Cmd {
	name := os.Getenv("VISUAL")
	if name == "" {
		name = os.Getenv("EDITOR")
	}
	if name == "" {
		name = "vi"
	}
	return exec.Command(name, path)
}

func (m documentModel) viewCmd() tea.Cmd {
	return m.opCmd("view", func(ctx context.Context) error {
		_, err := m.editor.View(ctx)
		return err
	})
}

func (m documentModel) opCmd(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return docOpMsg{op: op, err: fn(ctx)}
	}
}

func (m *documentModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m documentModel) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	title := activeHeaderStyle.Render(fmt.Sprintf("%s source", m.editor.Context()))
	if m.busy {
		title += "  (working...)"
	}
	content := activeBorderStyle.Width(m.width - 2).Render(m.viewport.View())

	keys := "tab switch  r refresh  ↑/↓ scroll  q quit"
	if m.editor.Context() == document.Resume {
		keys = "e edit  c recompile  X reset  " + keys
	}
	text := " " + keys
	if m.notice != "" {
		notice := m.notice
		if m.noticeErr {
			notice = noticeErrStyle.Render(notice)
		}
		text = " " + notice + "    " + keys
	}
	return title + "\n" + content + "\n" + statusBarStyle.Width(m.width).Render(text)
}

// RunDocuments opens the TeX viewer on e. The same editor serves the whole
// session, so switching documents and re-viewing reuse what it has loaded.
func RunDocuments(ctx context.Context, e *document.Editor) error {
	p := tea.NewProgram(newDocumentModel(ctx, e), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

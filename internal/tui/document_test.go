package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobseeker/internal/document"
)

type stubTex struct {
	tex        string
	cover      string
	texCalls   int
	coverCalls int
	saved      []string
	recompiles int
}

func (s *stubTex) Tex(_ context.Context) (string, error) {
	s.texCalls++
	return s.tex, nil
}

func (s *stubTex) CoverLetterTex(_ context.Context) (string, error) {
	s.coverCalls++
	return s.cover, nil
}

func (s *stubTex) SaveTex(_ context.Context, content string) error {
	s.saved = append(s.saved, content)
	s.tex = content
	return nil
}

func (s *stubTex) RecompileTex(_ context.Context) error {
	s.recompiles++
	return nil
}

func (s *stubTex) ReinitializeTex(_ context.Context) (string, error) {
	s.tex = "template"
	return s.tex, nil
}

// newTestViewer starts a viewer and runs its initial load.
func newTestViewer(t *testing.T, api *stubTex) (documentModel, *document.Editor) {
	t.Helper()
	e := document.NewEditor(api)
	m := newDocumentModel(context.Background(), e)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(documentModel)
	m = drain(t, m, m.Init())
	return m, e
}

// drain runs cmd and feeds its message back until no command is left.
func drain(t *testing.T, m documentModel, cmd tea.Cmd) documentModel {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 5 {
			t.Fatal("command chain did not settle")
		}
		next, c := m.Update(cmd())
		m = next.(documentModel)
		cmd = c
	}
	return m
}

func pressDoc(t *testing.T, m documentModel, s string) documentModel {
	t.Helper()
	next, cmd := m.Update(key(s))
	return drain(t, next.(documentModel), cmd)
}

func TestDocumentViewer_LoadsOnceAndReusesEditor(t *testing.T) {
	api := &stubTex{tex: `\section{Resume}`, cover: `\section{Letter}`}
	m, e := newTestViewer(t, api)

	if api.texCalls != 1 {
		t.Fatalf("texCalls = %d, want 1", api.texCalls)
	}
	if !strings.Contains(m.View(), `\section{Resume}`) {
		t.Errorf("view missing resume source:\n%s", m.View())
	}

	m = drain(t, m, m.viewCmd())
	if api.texCalls != 1 {
		t.Errorf("second view fetched again: texCalls = %d", api.texCalls)
	}

	m = pressDoc(t, m, "tab")
	if e.Context() != document.CoverLetter {
		t.Fatalf("context = %s, want cover-letter", e.Context())
	}
	if api.coverCalls != 1 {
		t.Errorf("coverCalls = %d, want 1", api.coverCalls)
	}
	if !strings.Contains(m.View(), `\section{Letter}`) {
		t.Errorf("view missing cover letter:\n%s", m.View())
	}
}

func TestDocumentViewer_CoverLetterIsReadOnly(t *testing.T) {
	api := &stubTex{tex: "resume", cover: "letter"}
	m, _ := newTestViewer(t, api)
	m = pressDoc(t, m, "tab")

	next, cmd := m.Update(key("e"))
	m = next.(documentModel)
	if cmd != nil {
		t.Error("edit on the cover letter should not start an editor")
	}
	if !m.noticeErr || !strings.Contains(m.notice, "read-only") {
		t.Errorf("notice = %q", m.notice)
	}

	m = pressDoc(t, m, "c")
	if api.recompiles != 0 {
		t.Errorf("recompiled from the cover letter")
	}
	if !m.noticeErr {
		t.Errorf("expected an error notice, got %q", m.notice)
	}
}

func TestDocumentViewer_SavedEditReloadsSource(t *testing.T) {
	api := &stubTex{tex: "old"}
	m, _ := newTestViewer(t, api)

	path := filepath.Join(t.TempDir(), "resume.tex")
	if err := os.WriteFile(path, []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(editedMsg{path: path, original: "old"})
	m = drain(t, next.(documentModel), cmd)

	if len(api.saved) != 1 || api.saved[0] != "new" {
		t.Fatalf("saved = %v", api.saved)
	}
	if api.texCalls != 2 {
		t.Errorf("texCalls = %d, want a reload after save", api.texCalls)
	}
	if !strings.Contains(m.View(), "new") {
		t.Errorf("view not reloaded:\n%s", m.View())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file not removed: %v", err)
	}
}

func TestDocumentViewer_UnchangedEditIsNotSaved(t *testing.T) {
	api := &stubTex{tex: "same"}
	m, _ := newTestViewer(t, api)

	path := filepath.Join(t.TempDir(), "resume.tex")
	if err := os.WriteFile(path, []byte("same"), 0o600); err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(editedMsg{path: path, original: "same"})
	m = next.(documentModel)
	if cmd != nil || len(api.saved) != 0 {
		t.Errorf("unchanged source was saved: %v", api.saved)
	}
	if m.notice != "no changes" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestDocumentViewer_KeysIgnoredWhileBusy(t *testing.T) {
	api := &stubTex{tex: "resume"}
	m, _ := newTestViewer(t, api)

	next, cmd := m.Update(key("r"))
	m = next.(documentModel)
	if cmd == nil {
		t.Fatal("refresh should return a command")
	}
	if _, second := m.Update(key("r")); second != nil {
		t.Error("second refresh started while the first is in flight")
	}
	m = drain(t, m, cmd)
	if api.texCalls != 2 {
		t.Errorf("texCalls = %d, want 2", api.texCalls)
	}
}

func TestDocumentViewer_ResetShowsTemplate(t *testing.T) {
	api := &stubTex{tex: "custom"}
	m, _ := newTestViewer(t, api)

	m = pressDoc(t, m, "X")
	if !strings.Contains(m.View(), "template") {
		t.Errorf("view missing template:\n%s", m.View())
	}
}

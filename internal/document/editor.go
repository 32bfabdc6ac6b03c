// Package document keeps the TeX editing state for the resume and the
// cover letter.
package document

import (
	"context"
	"fmt"
	"sync"
)

// Context selects which document the editor works on.
type Context string

const (
	Resume      Context = "resume"
	CoverLetter Context = "cover-letter"
)

// ParseContext validates a context name.
func ParseContext(s string) (Context, error) {
	switch Context(s) {
	case Resume, CoverLetter:
		return Context(s), nil
	}
	return "", fmt.Errorf("unknown document %q (want %q or %q)", s, Resume, CoverLetter)
}

// API is the backend surface the editor drives.
type API interface {
	Tex(ctx context.Context) (string, error)
	CoverLetterTex(ctx context.Context) (string, error)
	SaveTex(ctx context.Context, content string) error
	RecompileTex(ctx context.Context) error
	ReinitializeTex(ctx context.Context) (string, error)
}

// Editor holds the TeX source currently shown for one document context.
// An empty content means nothing is loaded.
type Editor struct {
	api API

	mu      sync.Mutex
	context Context
	content string
}

// NewEditor creates an editor on the resume context.
func NewEditor(api API) *Editor {
	return &Editor{api: api, context: Resume}
}

// Context returns the active document context.
func (e *Editor) Context() Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.context
}

// Content returns the loaded source, empty when nothing is loaded.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// View returns the loaded source, fetching it only when nothing is loaded.
func (e *Editor) View(ctx context.Context) (string, error) {
	e.mu.Lock()
	content := e.content
	e.mu.Unlock()
	if content != "" {
		return content, nil
	}
	return e.Refresh(ctx)
}

// Refresh always fetches the source of the active context.
func (e *Editor) Refresh(ctx context.Context) (string, error) {
	e.mu.Lock()
	c := e.context
	e.mu.Unlock()

	var (
		content string
		err     error
	)
	if c == CoverLetter {
		content, err = e.api.CoverLetterTex(ctx)
	} else {
		content, err = e.api.Tex(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("loading %s tex: %w", c, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.context != c {
		// Switched while fetching; drop the stale source.
		return content, nil
	}
	e.content = content
	return content, nil
}

// Save writes content as the resume source. On success the loaded source
// is cleared so the next View picks up the recompiled file.
func (e *Editor) Save(ctx context.Context, content string) error {
	if err := e.requireResume("save"); err != nil {
		return err
	}
	if err := e.api.SaveTex(ctx, content); err != nil {
		return err
	}
	e.mu.Lock()
	e.content = ""
	e.mu.Unlock()
	return nil
}

// Recompile rebuilds the resume PDF from its current source.
func (e *Editor) Recompile(ctx context.Context) error {
	if err := e.requireResume("recompile"); err != nil {
		return err
	}
	return e.api.RecompileTex(ctx)
}

// Reinitialize resets the resume to its template and loads the template
// source.
func (e *Editor) Reinitialize(ctx context.Context) (string, error) {
	if err := e.requireResume("reinitialize"); err != nil {
		return "", err
	}
	content, err := e.api.ReinitializeTex(ctx)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	e.content = content
	e.mu.Unlock()
	return content, nil
}

// SwitchContext makes c the active document. When source was loaded for
// the previous context, the new context's source is fetched right away.
func (e *Editor) SwitchContext(ctx context.Context, c Context) error {
	e.mu.Lock()
	if e.context == c {
		e.mu.Unlock()
		return nil
	}
	loaded := e.content != ""
	e.context = c
	e.content = ""
	e.mu.Unlock()

	if !loaded {
		return nil
	}
	_, err := e.Refresh(ctx)
	return err
}

// The backend only writes and compiles the resume source.
func (e *Editor) requireResume(op string) error {
	if c := e.Context(); c != Resume {
		return fmt.Errorf("cannot %s the %s: only the resume source is editable", op, c)
	}
	return nil
}

// Package tui holds the interactive terminal views: the task spinner, the
// job browser and the TeX viewer.
package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobseeker/internal/board"
	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/render"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	paneTodo = iota
	paneAll
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	noticeErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// detailFetchedMsg is sent when an async live-description fetch completes.
type detailFetchedMsg struct {
	id     int
	detail model.JobDetail
	err    error
}

// markedMsg is sent when a status update completes.
type markedMsg struct {
	id         int
	interested bool
	ok         bool
	err        error
}

// refreshedMsg is sent when the job list was reloaded. A quiet refresh
// keeps the current notice.
type refreshedMsg struct {
	err   error
	quiet bool
}

type browserModel struct {
	ctx     context.Context
	board   *board.Board
	fetcher model.JobDetailFetcher // may be nil

	todo          []model.Job
	all           []model.Job
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detailJob      model.Job
	detailLoading  bool
	detailViewport viewport.Model
	details        map[int]model.JobDetail // live descriptions already fetched

	marking    bool // a status update is in flight; both mark actions are off
	refreshing bool
	notice     string
	noticeErr  bool
}

func newBrowserModel(ctx context.Context, b *board.Board, fetcher model.JobDetailFetcher) browserModel {
	m := browserModel{
		ctx:     ctx,
		board:   b,
		fetcher: fetcher,
		details: make(map[int]model.JobDetail),
	}
	m.reloadLists()
	return m
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case detailFetchedMsg:
		if m.view != viewDetail || msg.id != m.detailJob.ID {
			return m, nil
		}
		m.detailLoading = false
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("live description unavailable: %v", msg.err), true)
			msg.detail = model.JobDetail{}
		}
		m.details[msg.id] = msg.detail
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case markedMsg:
		m.marking = false
		switch {
		case msg.err != nil:
			m.setNotice(fmt.Sprintf("could not update #%d: %v", msg.id, msg.err), true)
		case !msg.ok:
			m.setNotice(fmt.Sprintf("job #%d is no longer on the board", msg.id), true)
		default:
			label := "not interested"
			if msg.interested {
				label = "interested"
			}
			m.setNotice(fmt.Sprintf("marked #%d %s", msg.id, label), false)
			if m.view == viewDetail && m.detailJob.ID == msg.id {
				m.view = viewList
			}
		}
		m.reloadLists()
		m.recalcContent()
		// Resync with the backend so other jobs' statuses and the counts follow.
		if msg.err == nil && msg.ok && !m.refreshing {
			m.refreshing = true
			return m, m.refreshCmd(true)
		}
		return m, nil

	case refreshedMsg:
		m.refreshing = false
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("refresh failed: %v", msg.err), true)
			return m, nil
		}
		if !msg.quiet {
			m.setNotice(fmt.Sprintf("%d jobs loaded", len(m.board.All())), false)
		}
		m.reloadLists()
		m.recalcContent()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browserModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	case "i", "n":
		if job, ok := m.selected(); ok {
			return m.startMark(job, msg.String() == "i")
		}
		return m, nil
	case "o":
		if job, ok := m.selected(); ok && job.Link != "" {
			openURL(job.Link)
		}
		return m, nil
	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.setNotice("refreshing...", false)
		return m, m.refreshCmd(false)
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == paneTodo {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m browserModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.detailJob.Link != "" {
			openURL(m.detailJob.Link)
		}
		return m, nil
	case "i", "n":
		return m.startMark(m.detailJob, msg.String() == "i")
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// startMark sends the decision for job unless one is already in flight or
// the job was already marked.
func (m browserModel) startMark(job model.Job, interested bool) (tea.Model, tea.Cmd) {
	if m.marking || job.Processed() {
		return m, nil
	}
	m.marking = true
	m.setNotice("saving...", false)
	if m.view == viewDetail {
		m.detailViewport.SetContent(m.renderDetail())
	}
	return m, m.markCmd(job.ID, interested)
}

func (m browserModel) markCmd(id int, interested bool) tea.Cmd {
	ctx, b := m.ctx, m.board
	return func() tea.Msg {
		ok, err := b.Mark(ctx, id, interested)
		return markedMsg{id: id, interested: interested, ok: ok, err: err}
	}
}

func (m browserModel) refreshCmd(quiet bool) tea.Cmd {
	ctx, b := m.ctx, m.board
	return func() tea.Msg {
		return refreshedMsg{err: b.Refresh(ctx), quiet: quiet}
	}
}

func (m browserModel) openDetailView() (tea.Model, tea.Cmd) {
	job, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.view = viewDetail
	m.detailJob = job
	m.detailLoading = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)

	if _, cached := m.details[job.ID]; !cached && m.fetcher != nil {
		m.detailLoading = true
		m.detailViewport.SetContent(m.renderDetail())
		return m, m.fetchDetailCmd(job.ID)
	}

	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m browserModel) fetchDetailCmd(id int) tea.Cmd {
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		d, err := fetcher.FetchJobDetail(ctx, id)
		return detailFetchedMsg{id: id, detail: d, err: err}
	}
}

func (m *browserModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// reloadLists snapshots the board and keeps cursors in range.
func (m *browserModel) reloadLists() {
	m.todo = m.board.Unprocessed()
	m.all = m.board.All()
	m.leftCursor = clamp(m.leftCursor, 0, max(len(m.todo)-1, 0))
	m.rightCursor = clamp(m.rightCursor, 0, max(len(m.all)-1, 0))
	if m.view == viewDetail {
		if job, ok := m.board.Get(m.detailJob.ID); ok {
			m.detailJob = job
		}
	}
}

func (m *browserModel) moveCursor(delta int) {
	if m.activePane == paneTodo {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.todo)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.all)-1, 0))
	}
}

func (m *browserModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == paneTodo {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m browserModel) selected() (model.Job, bool) {
	jobs, cursor := m.todo, m.leftCursor
	if m.activePane == paneAll {
		jobs, cursor = m.all, m.rightCursor
	}
	if len(jobs) == 0 {
		return model.Job{}, false
	}
	return jobs[cursor], true
}

func (m *browserModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browserModel) recalcContent() {
	if !m.ready {
		return
	}
	m.leftViewport.SetContent(renderJobs(m.todo, m.leftCursor, m.activePane == paneTodo))
	m.rightViewport.SetContent(renderJobs(m.all, m.rightCursor, m.activePane == paneAll))
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browserModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" To Review (%d)", len(m.todo))
	rightHeader := fmt.Sprintf(" All Jobs (%d)", len(m.all))

	leftHeaderRendered := inactiveHeaderStyle.Render(leftHeader)
	rightHeaderRendered := inactiveHeaderStyle.Render(rightHeader)
	leftBorder := inactiveBorderStyle.Width(paneWidth)
	rightBorder := inactiveBorderStyle.Width(paneWidth)
	if m.activePane == paneTodo {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
	} else {
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Render(m.leftViewport.View()),
		" ",
		rightBorder.Render(m.rightViewport.View()),
	)

	keys := "←/→/Tab switch  ↑/↓ cursor  Enter detail  i interested  n not interested  o open  r refresh  q quit"
	return headerRow + "\n" + panes + "\n" + m.statusBar(keys)
}

func (m browserModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	if m.detailLoading {
		title += "  (loading...)"
	}

	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	keys := "o open link  esc/backspace back  ↑/↓ scroll  q quit"
	if !m.detailJob.Processed() && !m.marking {
		keys = "i interested  n not interested  " + keys
	}
	return title + "\n" + content + "\n" + m.statusBar(keys)
}

func (m browserModel) statusBar(keys string) string {
	text := " " + keys
	if m.notice != "" {
		notice := m.notice
		if m.noticeErr {
			notice = noticeErrStyle.Render(notice)
		}
		text = " " + notice + "    " + keys
	}
	return statusBarStyle.Width(m.width).Render(text)
}

func (m browserModel) renderDetail() string {
	width := max(m.width-8, 20)
	var b strings.Builder

	if d, ok := m.details[m.detailJob.ID]; ok {
		b.WriteString(render.JobDetail(m.detailJob, &d, width))
	} else {
		b.WriteString(render.JobDetail(m.detailJob, nil, width))
		if m.detailLoading {
			b.WriteString("\n" + hintStyle.Render("  fetching live job description...") + "\n")
		}
	}
	if m.marking {
		b.WriteString("\n" + hintStyle.Render("  saving decision...") + "\n")
	}
	return b.String()
}

func renderJobs(jobs []model.Job, cursor int, isActive bool) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, j := range jobs {
		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if isActive && i == cursor {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(j.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · score %s · %s",
			j.Company, j.Location, render.Score(j), render.StatusText(j))))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunBrowser launches the interactive two-pane job browser on b. fetcher
// serves live descriptions in the detail view and may be nil.
func RunBrowser(ctx context.Context, b *board.Board, fetcher model.JobDetailFetcher) error {
	p := tea.NewProgram(newBrowserModel(ctx, b, fetcher), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

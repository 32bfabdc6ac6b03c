// Package render turns backend payloads into terminal text.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobseeker/internal/model"
)

// NotAvailable is shown for absent optional fields.
const NotAvailable = "Not available."

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(12)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// One colour per score class, strongest first.
	positiveStyles = [...]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
	}
	negativeStyles = [...]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("217")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
	}
)

// ScoreClass classifies an evaluation-grid score: the score is rounded
// half up, clamped to [-3, 3] and named positive-N or negative-N. Zero,
// missing and unparsable scores have no class.
func ScoreClass(raw json.RawMessage) string {
	v, ok := parseScore(raw)
	if !ok {
		return ""
	}
	n := int(math.Max(-3, math.Min(3, math.Floor(v+0.5))))
	switch {
	case n > 0:
		return fmt.Sprintf("positive-%d", n)
	case n < 0:
		return fmt.Sprintf("negative-%d", -n)
	}
	return ""
}

// parseScore accepts a JSON number or a string starting with a number.
func parseScore(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f, true
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return 0, false
	}
	return leadingFloat(strings.TrimSpace(s))
}

// leadingFloat parses the longest numeric prefix of s ("2.5/3" → 2.5).
func leadingFloat(s string) (float64, bool) {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	for ; end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func classStyle(class string) (lipgloss.Style, bool) {
	var n int
	if _, err := fmt.Sscanf(class, "positive-%d", &n); err == nil && n >= 1 && n <= 3 {
		return positiveStyles[n-1], true
	}
	if _, err := fmt.Sscanf(class, "negative-%d", &n); err == nil && n >= 1 && n <= 3 {
		return negativeStyles[n-1], true
	}
	return lipgloss.Style{}, false
}

// GridItem is one evaluated criterion.
type GridItem struct {
	Criteria string
	Score    string
	Class    string
}

// ParseGrid decodes an evaluation grid given as a list of
// {criteria, score} objects. ok is false for any other shape.
func ParseGrid(raw json.RawMessage) ([]GridItem, bool) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]GridItem, 0, len(items))
	for _, item := range items {
		out = append(out, GridItem{
			Criteria: scalar(item["criteria"]),
			Score:    scalar(item["score"]),
			Class:    ScoreClass(item["score"]),
		})
	}
	return out, true
}

// scalar renders a JSON value the way it reads: strings unquoted,
// everything else as compact JSON.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// EvaluationGrid renders the reviewer's evaluation grid. A missing grid
// reads "Not available.", a string grid is shown verbatim, a list of
// criteria is shown one per block coloured by score class, and any other
// JSON is pretty-printed.
func EvaluationGrid(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return NotAvailable
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	if items, ok := ParseGrid(raw); ok {
		var b strings.Builder
		for i, it := range items {
			if i > 0 {
				b.WriteByte('\n')
			}
			block := fmt.Sprintf("criteria: %s\nscore: %s", it.Criteria, it.Score)
			if st, ok := classStyle(it.Class); ok {
				block = st.Render(block)
			}
			b.WriteString(block)
			b.WriteByte('\n')
		}
		return strings.TrimRight(b.String(), "\n")
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// Score formats an optional job score.
func Score(j model.Job) string {
	v, ok := j.ScoreValue()
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StatusText describes a job's application status.
func StatusText(j model.Job) string {
	if j.Status == nil {
		return "to review"
	}
	label := "not interested"
	if j.Status.Applied {
		label = "interested"
	}
	if j.Status.Date != "" {
		label += " (" + j.Status.Date + ")"
	}
	return label
}

// JobSummary is the one-line listing of a job.
func JobSummary(j model.Job) string {
	return fmt.Sprintf("%5d  %-5s  %s  %s",
		j.ID,
		Score(j),
		titleStyle.Render(j.Title),
		subtitleStyle.Render(fmt.Sprintf("%s · %s", j.Company, j.Location)),
	)
}

// JobDetail renders every field of a job, its evaluation grid and, when
// given, the live description.
func JobDetail(j model.Job, detail *model.JobDetail, width int) string {
	var b strings.Builder

	field := func(label, value string) {
		if value == "" {
			value = NotAvailable
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	section := func(name, body string) {
		b.WriteByte('\n')
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n\n")
		b.WriteString(body)
		b.WriteByte('\n')
	}

	b.WriteString(titleStyle.Render(j.Title))
	b.WriteString("\n\n")
	field("Company", j.Company)
	field("Location", j.Location)
	field("Score", Score(j))
	field("Status", StatusText(j))
	field("Link", j.Link)

	section("Evaluation Grid", EvaluationGrid(j.EvaluationGrid))

	synthesis := PlainText(j.Synthesis)
	if synthesis == "" {
		synthesis = NotAvailable
	}
	section("Synthesis and Decision", WordWrap(synthesis, width))

	if j.PreferredPitch != "" {
		section("Preferred Pitch", WordWrap(PlainText(j.PreferredPitch), width))
	}

	if detail != nil {
		desc := PlainText(detail.Description)
		if desc == "" {
			desc = "Could not retrieve live job description. Stored link: " + j.Link
		}
		section("Full Job Description", WordWrap(desc, width))
	}

	return b.String()
}

// StatusLine describes a task status in one line.
func StatusLine(kind string, s model.TaskStatus) string {
	switch s.State {
	case model.TaskComplete:
		return okStyle.Render(kind + ": complete")
	case model.TaskFailed:
		msg := s.Error
		if msg == "" {
			msg = "unknown error"
		}
		return errorStyle.Render(kind + " failed: " + msg)
	case model.TaskPending:
		line := kind + ": running"
		if s.Total > 0 {
			line += fmt.Sprintf(" %d / %d", s.Current, s.Total)
		}
		if s.Message != "" {
			line += " · " + s.Message
		}
		return pendingStyle.Render(line)
	}
	return subtitleStyle.Render(kind + ": idle")
}

// Error renders an error for the terminal.
func Error(err error) string {
	return errorStyle.Render("✗ " + err.Error())
}

// sortedKeys returns the keys of m in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

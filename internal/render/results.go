package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amishk599/jobseeker/internal/task"
)

// Extraction is the decoded result of a keyword extraction.
type Extraction struct {
	Validated bool
	// Raw extraction: group → subgroup → keywords.
	Groups map[string]map[string][]string
	// Validated keywords: group → {keywords, instructions}.
	ValidatedGroups map[string]ValidatedGroup
	Titles          []string
}

// ValidatedGroup is a keyword group the user already validated.
type ValidatedGroup struct {
	Keywords     []string `json:"keywords"`
	Instructions string   `json:"instructions"`
}

// DecodeExtraction reads the keywords and titles payloads.
func DecodeExtraction(r task.Result) (Extraction, error) {
	var out Extraction

	var head struct {
		Validated bool            `json:"validated"`
		Keywords  json.RawMessage `json:"keywords"`
		Error     string          `json:"error"`
	}
	if err := r.Decode(0, &head); err != nil {
		return out, fmt.Errorf("decoding keywords: %w", err)
	}
	if head.Error != "" {
		return out, fmt.Errorf("keywords: %s", head.Error)
	}

	if head.Validated {
		out.Validated = true
		if err := json.Unmarshal(head.Keywords, &out.ValidatedGroups); err != nil {
			return out, fmt.Errorf("decoding validated keywords: %w", err)
		}
	} else {
		var groups map[string]map[string]json.RawMessage
		if err := r.Decode(0, &groups); err != nil {
			return out, fmt.Errorf("decoding keywords: %w", err)
		}
		out.Groups = make(map[string]map[string][]string, len(groups))
		for name, subs := range groups {
			clean := make(map[string][]string, len(subs))
			for sub, raw := range subs {
				var kws []string
				if json.Unmarshal(raw, &kws) != nil || len(kws) == 0 {
					continue
				}
				clean[sub] = cleanLines(kws)
			}
			out.Groups[name] = clean
		}
	}

	if len(r.Payloads) > 1 {
		var titles []json.RawMessage
		if r.Decode(1, &titles) == nil {
			for _, t := range titles {
				var s string
				if json.Unmarshal(t, &s) == nil {
					out.Titles = append(out.Titles, cleanLine(s))
				}
			}
		}
	}
	return out, nil
}

func cleanLine(s string) string {
	return strings.TrimSpace(strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }), " "))
}

func cleanLines(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, cleanLine(s))
	}
	return out
}

// Ranking is the decoded ranking report.
type Ranking struct {
	Experiences []string
	Skills      []string
}

// DecodeRanking reads the ranking report payload.
func DecodeRanking(r task.Result) (Ranking, error) {
	var raw struct {
		Experience []json.RawMessage `json:"experience_ranking"`
		Skill      []json.RawMessage `json:"skill_ranking"`
	}
	if err := r.Decode(0, &raw); err != nil {
		return Ranking{}, fmt.Errorf("decoding ranking report: %w", err)
	}
	var out Ranking
	for _, e := range raw.Experience {
		out.Experiences = append(out.Experiences, scalar(e))
	}
	for _, s := range raw.Skill {
		out.Skills = append(out.Skills, scalar(s))
	}
	return out, nil
}

// DecodeOpeningLines reads the introduction report payload.
func DecodeOpeningLines(r task.Result) ([]string, error) {
	var raw struct {
		OpeningLines []string `json:"opening_lines"`
	}
	if err := r.Decode(0, &raw); err != nil {
		return nil, fmt.Errorf("decoding introduction report: %w", err)
	}
	return raw.OpeningLines, nil
}

// LoadedJob is the job the customizer loaded during the initial load.
type LoadedJob struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Synthesis   string `json:"synthesis"`
}

// DecodeInitialLoad reads the job details carried by the final
// initial-load status.
func DecodeInitialLoad(r task.Result) (LoadedJob, bool) {
	var raw struct {
		JobDetails *LoadedJob `json:"job_details"`
	}
	if len(r.Status.Raw) == 0 || json.Unmarshal(r.Status.Raw, &raw) != nil || raw.JobDetails == nil {
		return LoadedJob{}, false
	}
	return *raw.JobDetails, true
}

// TaskResult renders the outcome of a completed task.
func TaskResult(r task.Result, width int) (string, error) {
	var b strings.Builder
	heading := func(s string) {
		b.WriteString(sectionStyle.Render(s))
		b.WriteString("\n\n")
	}
	bullet := func(s string) {
		b.WriteString("  • ")
		b.WriteString(s)
		b.WriteByte('\n')
	}

	switch r.Kind {
	case task.InitialLoad:
		job, ok := DecodeInitialLoad(r)
		if !ok {
			return okStyle.Render("Job loaded."), nil
		}
		b.WriteString(titleStyle.Render(job.Title))
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s · %s", job.Company, job.Location)))
		b.WriteString("\n\n")
		if s := PlainText(job.Synthesis); s != "" {
			heading("Synthesis")
			b.WriteString(WordWrap(s, width))
			b.WriteString("\n\n")
		}
		if d := PlainText(job.Description); d != "" {
			heading("Description")
			b.WriteString(WordWrap(d, width))
			b.WriteByte('\n')
		}

	case task.Extraction:
		ex, err := DecodeExtraction(r)
		if err != nil {
			return "", err
		}
		if len(ex.Titles) > 0 {
			heading("Title suggestions")
			for _, t := range ex.Titles {
				bullet(t)
			}
			b.WriteByte('\n')
		}
		heading("Keywords")
		if ex.Validated {
			for _, g := range sortedKeys(ex.ValidatedGroups) {
				vg := ex.ValidatedGroups[g]
				b.WriteString(titleStyle.Render(g) + " " + okStyle.Render("(validated)") + "\n")
				b.WriteString("  " + strings.Join(vg.Keywords, ", ") + "\n")
				if vg.Instructions != "" {
					b.WriteString(subtitleStyle.Render("  note: "+vg.Instructions) + "\n")
				}
			}
		} else {
			for _, g := range sortedKeys(ex.Groups) {
				b.WriteString(titleStyle.Render(g) + "\n")
				for _, sub := range sortedKeys(ex.Groups[g]) {
					label := strings.ReplaceAll(sub, "_", " ")
					b.WriteString("  " + subtitleStyle.Render(label+":") + " " + strings.Join(ex.Groups[g][sub], ", ") + "\n")
				}
			}
		}

	case task.Ranking:
		rk, err := DecodeRanking(r)
		if err != nil {
			return "", err
		}
		heading("Experience order")
		for i, e := range rk.Experiences {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e))
		}
		b.WriteByte('\n')
		heading("Skill order")
		for i, s := range rk.Skills {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
		}

	case task.Introduction:
		lines, err := DecodeOpeningLines(r)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			return "No suggestions were generated.", nil
		}
		heading("Opening lines")
		for i, l := range lines {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, l))
		}

	case task.CoverLetter:
		b.WriteString(okStyle.Render("Cover letter generated."))
		if r.Status.Content != "" {
			b.WriteString("\n\n")
			b.WriteString(r.Status.Content)
		}

	case task.Scraping:
		b.WriteString(okStyle.Render(fmt.Sprintf("Scraping completed! %d new jobs added.", r.Status.NewJobsCount)))

	case task.Review, task.ReviewLatest:
		b.WriteString(okStyle.Render(fmt.Sprintf("Review completed! %d jobs reviewed.", r.Status.Total)))

	case task.StatusUpdate:
		b.WriteString(okStyle.Render(fmt.Sprintf("Status check completed! %d jobs updated to 'Closed'.", r.Status.JobsUpdatedCount)))

	default:
		b.WriteString(okStyle.Render(r.Kind + " completed."))
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

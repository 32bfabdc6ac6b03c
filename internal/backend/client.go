package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/jobseeker/internal/model"
)

// DefaultCustomizerPrefix is where the backend mounts the resume customizer.
const DefaultCustomizerPrefix = "/customizer"

var (
	_ model.JobFetcher       = (*Client)(nil)
	_ model.JobDetailFetcher = (*Client)(nil)
	_ model.StatusSetter     = (*Client)(nil)
)

// Client talks to the job-assistant backend over HTTP+JSON.
type Client struct {
	baseURL          string
	customizerPrefix string
	http             *http.Client
}

// NewClient creates a client for the backend at baseURL. Customizer
// endpoints are resolved under customizerPrefix.
func NewClient(baseURL, customizerPrefix string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		customizerPrefix: "/" + strings.Trim(customizerPrefix, "/"),
		http:             httpClient,
	}
}

// CustomizerPrefix returns the normalised customizer mount point.
func (c *Client) CustomizerPrefix() string {
	if c.customizerPrefix == "/" {
		return ""
	}
	return c.customizerPrefix
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) customizer(path string) string {
	return c.CustomizerPrefix() + path
}

// ack is the common {success, error|message} reply.
type ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a ack) err(op string) error {
	if a.Success {
		return nil
	}
	msg := a.Error
	if msg == "" {
		msg = a.Message
	}
	return &model.BackendError{Op: op, Message: msg}
}

func (c *Client) postAck(ctx context.Context, op, path string, body any) error {
	var reply ack
	if err := c.PostJSON(ctx, path, body, &reply); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return reply.err(op)
}

// --- reviewer ---

type refreshReply struct {
	ack
	Jobs []model.Job `json:"jobs"`
}

// FetchJobs returns every reviewed job with its current application status.
func (c *Client) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var reply refreshReply
	if err := c.GetJSON(ctx, "/refresh-jobs", &reply); err != nil {
		return nil, fmt.Errorf("refresh jobs: %w", err)
	}
	if err := reply.err("refresh jobs"); err != nil {
		return nil, err
	}
	return reply.Jobs, nil
}

// FetchJobDetail fetches the live description of a job. The backend
// scrapes the original posting on every call.
func (c *Client) FetchJobDetail(ctx context.Context, jobID int) (model.JobDetail, error) {
	var detail model.JobDetail
	if err := c.GetJSON(ctx, fmt.Sprintf("/job/%d", jobID), &detail); err != nil {
		return model.JobDetail{}, fmt.Errorf("job %d detail: %w", jobID, err)
	}
	if detail.Error != "" {
		return model.JobDetail{}, &model.BackendError{Op: fmt.Sprintf("job %d detail", jobID), Message: detail.Error}
	}
	return detail, nil
}

type statusReply struct {
	ack
	Status model.ApplicationStatus `json:"status"`
}

// SetJobStatus marks a job as interested (applied=true) or not interested.
func (c *Client) SetJobStatus(ctx context.Context, jobID int, applied bool) (model.ApplicationStatus, error) {
	op := fmt.Sprintf("set status of job %d", jobID)
	var reply statusReply
	body := map[string]bool{"applied": applied}
	if err := c.PostJSON(ctx, fmt.Sprintf("/status/%d", jobID), body, &reply); err != nil {
		return model.ApplicationStatus{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := reply.err(op); err != nil {
		return model.ApplicationStatus{}, err
	}
	return reply.Status, nil
}

type scrapeConfig struct {
	Destinations []model.Destination `json:"destinations"`
}

// ScrapeConfig returns the scraping destinations stored by the backend.
func (c *Client) ScrapeConfig(ctx context.Context) ([]model.Destination, error) {
	var cfg scrapeConfig
	if err := c.GetJSON(ctx, "/scrape/config", &cfg); err != nil {
		return nil, fmt.Errorf("scrape config: %w", err)
	}
	return cfg.Destinations, nil
}

// SaveScrapeConfig replaces the scraping destinations.
func (c *Client) SaveScrapeConfig(ctx context.Context, destinations []model.Destination) error {
	if err := c.PostJSON(ctx, "/scrape/config", scrapeConfig{Destinations: destinations}, nil); err != nil {
		return fmt.Errorf("save scrape config: %w", err)
	}
	return nil
}

// SelectJob points the customizer at a job; later customizer tasks work on
// it. The backend answers with its dashboard page, which is discarded.
func (c *Client) SelectJob(ctx context.Context, jobID int) error {
	if err := c.GetJSON(ctx, c.customizer(fmt.Sprintf("/apply/%d", jobID)), nil); err != nil {
		return fmt.Errorf("select job %d: %w", jobID, err)
	}
	return nil
}

// --- customizer: documents ---

type contentReply struct {
	ack
	Content string `json:"content"`
}

// Tex returns the current resume TeX source.
func (c *Client) Tex(ctx context.Context) (string, error) {
	return c.texContent(ctx, "resume tex", c.customizer("/tex"))
}

// CoverLetterTex returns the current cover-letter TeX source.
func (c *Client) CoverLetterTex(ctx context.Context) (string, error) {
	return c.texContent(ctx, "cover letter tex", c.customizer("/cover-letter-tex"))
}

func (c *Client) texContent(ctx context.Context, op, path string) (string, error) {
	var reply contentReply
	if err := c.GetJSON(ctx, path, &reply); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if reply.Content == "" {
		return "", &model.BackendError{Op: op, Message: reply.Error}
	}
	return reply.Content, nil
}

// SaveTex writes the resume TeX source and recompiles it.
func (c *Client) SaveTex(ctx context.Context, content string) error {
	return c.postAck(ctx, "save tex", c.customizer("/save-tex"), map[string]string{"content": content})
}

// RecompileTex recompiles the resume without changing its source.
func (c *Client) RecompileTex(ctx context.Context) error {
	return c.postAck(ctx, "recompile tex", c.customizer("/recompile-tex"), nil)
}

// ReinitializeTex resets the resume to its template and returns the
// template source.
func (c *Client) ReinitializeTex(ctx context.Context) (string, error) {
	var reply contentReply
	if err := c.PostJSON(ctx, c.customizer("/reinitialize-tex"), nil, &reply); err != nil {
		return "", fmt.Errorf("reinitialize tex: %w", err)
	}
	if err := reply.err("reinitialize tex"); err != nil {
		return "", err
	}
	return reply.Content, nil
}

// UpdateTitle replaces the resume headline.
func (c *Client) UpdateTitle(ctx context.Context, title string) error {
	return c.postAck(ctx, "update title", c.customizer("/update-title"), map[string]string{"title": title})
}

// SaveIntroduction writes the chosen opening line into the resume.
func (c *Client) SaveIntroduction(ctx context.Context, introduction string) error {
	return c.postAck(ctx, "save introduction", c.customizer("/save-introduction"), map[string]string{"introduction": introduction})
}

// CoverLetterContent returns the markdown cover letter.
func (c *Client) CoverLetterContent(ctx context.Context) (string, error) {
	var reply contentReply
	if err := c.GetJSON(ctx, c.customizer("/cover-letter-content"), &reply); err != nil {
		return "", fmt.Errorf("cover letter content: %w", err)
	}
	if err := reply.err("cover letter content"); err != nil {
		return "", err
	}
	return reply.Content, nil
}

// SaveCoverLetter stores the markdown cover letter.
func (c *Client) SaveCoverLetter(ctx context.Context, content string) error {
	return c.postAck(ctx, "save cover letter", c.customizer("/save-cover-letter"), map[string]string{"content": content})
}

// --- customizer: keywords ---

// KeywordGroup is one validated keyword group with its instructions.
type KeywordGroup struct {
	Keywords     []string `json:"keywords"`
	Instructions string   `json:"instructions"`
}

// SaveValidatedKeywords stores the user-validated keyword groups, keyed by
// group title.
func (c *Client) SaveValidatedKeywords(ctx context.Context, groups map[string]KeywordGroup) error {
	if len(groups) == 0 {
		return &model.BackendError{Op: "save validated keywords", Message: "no keyword groups"}
	}
	return c.postAck(ctx, "save validated keywords", c.customizer("/save-validated-keywords"), groups)
}

type executorReply struct {
	ack
	Report json.RawMessage `json:"report"`
}

// RunExecutor inserts the validated keywords into the resume and returns
// the executor's report lines.
func (c *Client) RunExecutor(ctx context.Context) ([]string, error) {
	var reply executorReply
	if err := c.PostJSON(ctx, c.customizer("/run-executor"), nil, &reply); err != nil {
		return nil, fmt.Errorf("run executor: %w", err)
	}
	if err := reply.err("run executor"); err != nil {
		return nil, err
	}
	return reportLines(reply.Report), nil
}

// reportLines accepts a report given as a list of lines or a single string.
func reportLines(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var lines []string
	if json.Unmarshal(raw, &lines) == nil {
		return lines
	}
	var single string
	if json.Unmarshal(raw, &single) == nil && single != "" {
		return []string{single}
	}
	return []string{string(raw)}
}

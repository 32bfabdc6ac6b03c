package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/backend"
	"github.com/amishk599/jobseeker/internal/board"
	"github.com/amishk599/jobseeker/internal/config"
	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/notifier"
	"github.com/amishk599/jobseeker/internal/ratelimit"
	"github.com/amishk599/jobseeker/internal/retry"
	"github.com/amishk599/jobseeker/internal/task"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobseeker",
	Short: "Terminal client for the job-application assistant",
	Long: "jobseeker drives the job-application assistant backend from the terminal: " +
		"it runs scraping, review and resume-customization tasks, browses reviewed jobs, " +
		"edits the resume TeX and watches for new matches.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSEEKER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSEEKER_CONFIG env var > "./config.yaml".
// Only the implicit ./config.yaml may be missing, in which case defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv("JOBSEEKER_CONFIG"); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault("config.yaml", true)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// quietLogger is used while a TUI owns the terminal. With --debug it logs
// to stderr instead of staying silent.
func quietLogger(dbg bool) *slog.Logger {
	if dbg {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Backend.Timeout}
}

func newClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.CustomizerPrefix, newHTTPClient(cfg))
}

// newBoardFetcher fetches the job list, retrying transient backend errors.
func newBoardFetcher(cfg *config.Config, client *backend.Client, logger *slog.Logger) model.JobFetcher {
	return retry.NewRetryFetcher(client, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
}

func newBoard(cfg *config.Config, client *backend.Client, logger *slog.Logger) *board.Board {
	return board.New(newBoardFetcher(cfg, client, logger), client)
}

// newDetailFetcher spaces out live description fetches to the backend host.
func newDetailFetcher(cfg *config.Config, client *backend.Client) model.JobDetailFetcher {
	host := cfg.Backend.BaseURL
	if u, err := url.Parse(cfg.Backend.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	limiter := ratelimit.NewHostRateLimiter(cfg.RateLimit.DetailMinDelay)
	return ratelimit.NewRateLimitedDetailFetcher(client, limiter, host)
}

func taskKinds(client *backend.Client) map[string]task.Kind {
	return task.Kinds(client.CustomizerPrefix())
}

// commandContext is cancelled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func parseJobID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", arg)
	}
	return id, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/config"
	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/render"
	"github.com/amishk599/jobseeker/internal/store"
	"github.com/amishk599/jobseeker/internal/task"
	"github.com/amishk599/jobseeker/internal/tui"
)

// outputWidth is the wrap width of rendered task results.
const outputWidth = 100

var (
	runPlain bool
	runDays  int
	runCount int
	runJobID int
)

var runCmd = &cobra.Command{
	Use:   "run <kind> [kind...]",
	Short: "Start backend tasks and wait for their results",
	Long: "Starts each task on the backend, polls its status every 2s until it completes or fails, " +
		"then prints the result. Several kinds run concurrently. Kinds: " +
		strings.Join(task.Names(task.Kinds("")), ", ") + ".",
	Args: cobra.MinimumNArgs(1),
	RunE: runTasks,
}

func init() {
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "print status lines instead of the spinner")
	runCmd.Flags().IntVar(&runDays, "days", 0, "scraping time horizon in days (default: watch.scrape_days)")
	runCmd.Flags().IntVar(&runCount, "count", 10, "number of jobs to review")
	runCmd.Flags().IntVar(&runJobID, "job", 0, "select this job in the customizer before starting")
	rootCmd.AddCommand(runCmd)
}

func runTasks(cmd *cobra.Command, args []string) error {
	plain := runPlain || len(args) > 1
	logger := setupLogger(debug)
	if !plain {
		logger = quietLogger(debug)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	client := newClient(cfg)
	kinds := taskKinds(client)

	var selected []task.Kind
	for _, name := range args {
		kind, err := task.Lookup(kinds, name)
		if err != nil {
			return err
		}
		kind, err = withRunBody(kind, cfg)
		if err != nil {
			return err
		}
		selected = append(selected, kind)
	}

	ctx, stop := commandContext()
	defer stop()

	if runJobID > 0 {
		if err := client.SelectJob(ctx, runJobID); err != nil {
			return err
		}
	}

	sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer sqlStore.Close()

	poller := task.NewPoller(client, task.DefaultInterval, sqlStore, logger)
	out := cmd.OutOrStdout()

	if plain {
		return runPlainTasks(ctx, poller, selected, out, logger)
	}
	return runSpinnerTask(ctx, poller, selected[0], out)
}

// withRunBody attaches the start body the kind expects.
func withRunBody(kind task.Kind, cfg *config.Config) (task.Kind, error) {
	switch kind.Name {
	case task.Scraping:
		days := runDays
		if days == 0 {
			days = cfg.Watch.ScrapeDays
		}
		if days < 1 {
			return kind, fmt.Errorf("--days must be at least 1")
		}
		body := map[string]any{"days": days}
		if dests := cfg.Watch.EnabledDestinations(); len(dests) > 0 {
			body["destinations"] = dests
		}
		return kind.WithBody(body), nil
	case task.Review, task.ReviewLatest:
		if runCount < 1 {
			return kind, fmt.Errorf("--count must be at least 1")
		}
		return kind.WithBody(map[string]int{"count": runCount}), nil
	}
	return kind, nil
}

// runPlainTasks runs every kind concurrently through a tracker, printing a
// status line per status reply.
func runPlainTasks(ctx context.Context, poller *task.Poller, kinds []task.Kind, out io.Writer, logger *slog.Logger) error {
	var mu sync.Mutex
	emit := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, s)
	}

	tracker := task.NewTracker(poller.WithProgress(func(kind string, s model.TaskStatus) {
		emit(render.StatusLine(kind, s))
	}))
	defer tracker.CancelAll()

	handles := make([]*task.Handle, 0, len(kinds))
	for _, kind := range kinds {
		handles = append(handles, tracker.Start(ctx, kind, func(r task.Result) error {
			text, err := render.TaskResult(r, outputWidth)
			if err != nil {
				return err
			}
			emit(text)
			return nil
		}))
	}

	failed := 0
	for _, h := range handles {
		if err := h.Wait(); err != nil {
			logger.Debug("task ended with error", "kind", h.Kind, "error", err)
			emit(render.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", failed, len(handles))
	}
	return nil
}

// runSpinnerTask runs one kind behind the inline spinner, then prints its
// result once the spinner is gone.
func runSpinnerTask(ctx context.Context, poller *task.Poller, kind task.Kind, out io.Writer) error {
	var result string
	err := tui.RunTask(ctx, kind.Name, func(ctx context.Context, progress func(model.TaskStatus)) error {
		p := poller.WithProgress(func(_ string, s model.TaskStatus) { progress(s) })
		return p.Run(ctx, kind, func(r task.Result) error {
			text, err := render.TaskResult(r, outputWidth)
			result = text
			return err
		})
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

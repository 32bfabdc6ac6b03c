package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/filter"
	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/poller"
	"github.com/amishk599/jobseeker/internal/scheduler"
	"github.com/amishk599/jobseeker/internal/store"
	"github.com/amishk599/jobseeker/internal/task"
)

var (
	watchOnce   bool
	watchDryRun bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scrape, review and notify on an interval",
	Long: "Runs the watch cycle immediately and then every watch.interval until SIGINT/SIGTERM: " +
		"scrape new jobs, review them, refresh the job list and notify about new matches.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run one cycle and exit")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "do not remember notified jobs or record runs")
	rootCmd.AddCommand(watchCmd)
}

// watchStore is what the watch cycle persists to.
type watchStore interface {
	model.SeenStore
	model.RunRecorder
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"backend", cfg.Backend.BaseURL,
		"interval", cfg.Watch.Interval.String(),
		"scrape_days", cfg.Watch.ScrapeDays,
		"auto_review", cfg.Watch.AutoReview,
		"destinations", len(cfg.Watch.EnabledDestinations()),
		"title_keywords", len(cfg.Filters.TitleKeywords),
		"min_score", cfg.Filters.MinScore,
	)

	var st watchStore
	if watchDryRun {
		logger.Info("dry-run mode enabled, no jobs will be marked as seen")
		st = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		st = sqlStore
	}

	client := newClient(cfg)
	kinds := taskKinds(client)
	runner := task.NewPoller(client, task.DefaultInterval, st, logger)

	pollers := []scheduler.Poller{
		poller.NewBoardPoller(
			runner,
			kinds,
			poller.BoardOptions{
				ScrapeDays:   cfg.Watch.ScrapeDays,
				Destinations: cfg.Watch.EnabledDestinations(),
				AutoReview:   cfg.Watch.AutoReview,
			},
			newBoardFetcher(cfg, client, logger),
			filter.NewJobFilter(cfg.Filters),
			st,
			setupNotifier(cfg, newHTTPClient(cfg), logger),
			logger,
		),
	}
	if cfg.Watch.UpdateStatuses {
		pollers = append(pollers, poller.NewStatusUpdater(runner, kinds, logger))
	}

	ctx, stop := commandContext()
	defer stop()

	sched := scheduler.NewScheduler(pollers, cfg.Watch.Interval, time.Second, logger)

	if watchOnce {
		if failed := sched.RunOnce(ctx); failed > 0 {
			return fmt.Errorf("%d of %d pollers failed", failed, len(pollers))
		}
		logger.Info("watch cycle complete")
		return nil
	}

	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("goodbye")
	return nil
}

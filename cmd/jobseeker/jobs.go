package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/render"
	"github.com/amishk599/jobseeker/internal/tui"
)

var (
	jobsAll          bool
	showNoLive       bool
	markInterested   bool
	markUninterested bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List reviewed jobs",
	Long:  "Lists the jobs still waiting for a decision, best score first. --all lists every job in backend order.",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one job with its evaluation and live description",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var markCmd = &cobra.Command{
	Use:   "mark <id>",
	Short: "Mark a job as interested or not interested",
	Args:  cobra.ExactArgs(1),
	RunE:  runMark,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and triage jobs interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	jobsCmd.Flags().BoolVar(&jobsAll, "all", false, "include jobs already marked")
	showCmd.Flags().BoolVar(&showNoLive, "no-live", false, "skip fetching the live job description")
	markCmd.Flags().BoolVar(&markInterested, "interested", false, "mark as interested")
	markCmd.Flags().BoolVar(&markUninterested, "not-interested", false, "mark as not interested")
	markCmd.MarkFlagsMutuallyExclusive("interested", "not-interested")
	markCmd.MarkFlagsOneRequired("interested", "not-interested")

	rootCmd.AddCommand(jobsCmd, showCmd, markCmd, browseCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	b := newBoard(cfg, newClient(cfg), logger)
	if err := b.Refresh(ctx); err != nil {
		return err
	}

	jobs := b.Unprocessed()
	if jobsAll {
		jobs = b.All()
	}
	out := cmd.OutOrStdout()
	for _, j := range jobs {
		line := render.JobSummary(j)
		if jobsAll {
			line += "  [" + render.StatusText(j) + "]"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\n%d shown, %d total\n", len(jobs), b.Len())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}
	logger := setupLogger(debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	client := newClient(cfg)
	b := newBoard(cfg, client, logger)
	if err := b.Refresh(ctx); err != nil {
		return err
	}
	job, ok := b.Get(id)
	if !ok {
		return fmt.Errorf("job %d not found", id)
	}

	var detail *model.JobDetail
	if !showNoLive {
		d, err := newDetailFetcher(cfg, client).FetchJobDetail(ctx, id)
		if err != nil {
			logger.Warn("live description unavailable", "job_id", id, "error", err)
		}
		detail = &d
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.JobDetail(job, detail, outputWidth))
	return nil
}

func runMark(cmd *cobra.Command, args []string) error {
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}
	logger := setupLogger(debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	b := newBoard(cfg, newClient(cfg), logger)
	if err := b.Refresh(ctx); err != nil {
		return err
	}

	ok, err := b.Mark(ctx, id, markInterested)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %d not found", id)
	}

	job, _ := b.Get(id)
	fmt.Fprintf(cmd.OutOrStdout(), "job %d: %s\n", id, render.StatusText(job))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := quietLogger(debug)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	client := newClient(cfg)
	b := newBoard(cfg, client, logger)
	if err := b.Refresh(ctx); err != nil {
		return err
	}
	return tui.RunBrowser(ctx, b, newDetailFetcher(cfg, client))
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/store"
)

var (
	historyKind  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent task runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only show runs of this kind")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer sqlStore.Close()

	runs, err := sqlStore.ListRuns(historyKind, historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no task runs recorded")
		return nil
	}
	fmt.Fprintln(out, historyTable(runs, time.Now()))
	return nil
}

func historyTable(runs []model.TaskRun, now time.Time) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "KIND", "STATE", "TOOK", "ERROR")
	for _, r := range runs {
		t.Row(
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Kind,
			string(r.State),
			r.Duration().Round(time.Second).String(),
			truncate(r.Error, 60),
		)
	}
	return t.Render()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

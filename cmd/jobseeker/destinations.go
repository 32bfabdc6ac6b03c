package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/model"
)

var destRemoteType string

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "Scraping destinations stored by the backend",
}

var destinationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scraping destinations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		dests, err := newClient(cfg).ScrapeConfig(ctx)
		if err != nil {
			return err
		}
		printDestinations(cmd.OutOrStdout(), dests)
		return nil
	},
}

var destinationsAddCmd = &cobra.Command{
	Use:   "add <location>",
	Short: "Add an enabled scraping destination",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := strings.TrimSpace(strings.Join(args, " "))
		if location == "" {
			return fmt.Errorf("location must not be empty")
		}
		if !validRemoteType(destRemoteType) {
			return fmt.Errorf("--remote-type must be one of any, remote, hybrid, on-site (got %q)", destRemoteType)
		}

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		client := newClient(cfg)
		dests, err := client.ScrapeConfig(ctx)
		if err != nil {
			return err
		}
		dests = addDestination(dests, location, destRemoteType)
		if err := client.SaveScrapeConfig(ctx, dests); err != nil {
			return err
		}
		printDestinations(cmd.OutOrStdout(), dests)
		return nil
	},
}

var destinationsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a scraping destination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid destination id %q", args[0])
		}

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		client := newClient(cfg)
		dests, err := client.ScrapeConfig(ctx)
		if err != nil {
			return err
		}
		if !toggleDestination(dests, id) {
			return fmt.Errorf("destination %d not found", id)
		}
		if err := client.SaveScrapeConfig(ctx, dests); err != nil {
			return err
		}
		printDestinations(cmd.OutOrStdout(), dests)
		return nil
	},
}

func init() {
	destinationsAddCmd.Flags().StringVar(&destRemoteType, "remote-type", "any", "any, remote, hybrid or on-site")
	destinationsCmd.AddCommand(destinationsListCmd, destinationsAddCmd, destinationsToggleCmd)
	rootCmd.AddCommand(destinationsCmd)
}

func validRemoteType(t string) bool {
	switch t {
	case "any", "remote", "hybrid", "on-site":
		return true
	}
	return false
}

// addDestination appends an enabled destination with the next free id.
func addDestination(dests []model.Destination, location, remoteType string) []model.Destination {
	next := 1
	for _, d := range dests {
		if d.ID >= next {
			next = d.ID + 1
		}
	}
	return append(dests, model.Destination{ID: next, Location: location, RemoteType: remoteType, Enabled: true})
}

// toggleDestination flips the enabled flag of destination id in place.
func toggleDestination(dests []model.Destination, id int) bool {
	for i := range dests {
		if dests[i].ID == id {
			dests[i].Enabled = !dests[i].Enabled
			return true
		}
	}
	return false
}

func printDestinations(w io.Writer, dests []model.Destination) {
	if len(dests) == 0 {
		fmt.Fprintln(w, "no destinations configured")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "LOCATION", "REMOTE", "ENABLED")
	for _, d := range dests {
		enabled := "no"
		if d.Enabled {
			enabled = "yes"
		}
		t.Row(strconv.Itoa(d.ID), d.Location, d.RemoteType, enabled)
	}
	fmt.Fprintln(w, t.Render())
}

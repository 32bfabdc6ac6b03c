package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/backend"
)

var (
	hideExperiences    []string
	skillsExpertise    []string
	skillsLanguages    []string
	skillsTechnologies []string
	deleteConfirmed    bool
)

var experiencesCmd = &cobra.Command{
	Use:   "experiences",
	Short: "Order and hide resume experiences",
}

var experiencesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current experience order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		order, err := newClient(cfg).ExperienceOrder(ctx)
		if err != nil {
			return err
		}
		printExperienceOrder(cmd.OutOrStdout(), order)
		return nil
	},
}

var experiencesOrderCmd = &cobra.Command{
	Use:   "order <experience> [experience...]",
	Short: "Reorder the experiences and recompile",
	Long: "Rewrites the Experience section in the given order. Experiences passed to --hide " +
		"stay in the source but are left out of the PDF.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := buildExperienceOrder(args, hideExperiences)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		if err := newClient(cfg).ApplyExperienceOrder(ctx, order); err != nil {
			return err
		}
		printExperienceOrder(cmd.OutOrStdout(), order)
		return nil
	},
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Order resume skills",
}

var skillsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the skills listed in the resume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		skills, err := newClient(cfg).Skills(ctx)
		if err != nil {
			return err
		}
		printSkills(cmd.OutOrStdout(), skills)
		return nil
	},
}

var skillsOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Rewrite skill lines in a new order and recompile",
	Long: "Categories not given on the command line keep their current order. " +
		"Skills left out of a given category are removed from the resume.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("expertise") && !flags.Changed("languages") && !flags.Changed("technologies") {
			return fmt.Errorf("give at least one of --expertise, --languages, --technologies")
		}
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		client := newClient(cfg)
		skills, err := client.Skills(ctx)
		if err != nil {
			return err
		}
		if flags.Changed("expertise") {
			skills.Expertise = cleanList(skillsExpertise)
		}
		if flags.Changed("languages") {
			skills.ProgrammingLanguages = cleanList(skillsLanguages)
		}
		if flags.Changed("technologies") {
			skills.Technologies = cleanList(skillsTechnologies)
		}

		if err := client.ApplySkillRanking(ctx, skills); err != nil {
			return err
		}
		printSkills(cmd.OutOrStdout(), skills)
		return nil
	},
}

var highlightsCmd = &cobra.Command{
	Use:   "highlights",
	Short: "Job posting highlights for the selected job",
}

var highlightsSaveCmd = &cobra.Command{
	Use:   "save <file|->",
	Short: "Store highlighted passages, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		highlights := parseHighlights(data)

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		if err := newClient(cfg).SaveHighlights(ctx, highlights); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d highlights saved\n", len(highlights))
		return nil
	},
}

var publicationsCmd = &cobra.Command{
	Use:   "publications",
	Short: "Resume Publications section",
}

var publicationsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the Publications section and recompile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteConfirmed {
			return fmt.Errorf("this cannot be undone; pass --yes to delete the Publications section")
		}
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		if err := newClient(cfg).DeletePublications(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "publications section deleted")
		return nil
	},
}

func init() {
	experiencesOrderCmd.Flags().StringSliceVar(&hideExperiences, "hide", nil, "experiences to leave out of the PDF")
	experiencesCmd.AddCommand(experiencesShowCmd, experiencesOrderCmd)

	skillsOrderCmd.Flags().StringSliceVar(&skillsExpertise, "expertise", nil, "expertise, in order")
	skillsOrderCmd.Flags().StringSliceVar(&skillsLanguages, "languages", nil, "programming languages, in order")
	skillsOrderCmd.Flags().StringSliceVar(&skillsTechnologies, "technologies", nil, "technologies, in order")
	skillsCmd.AddCommand(skillsShowCmd, skillsOrderCmd)

	highlightsCmd.AddCommand(highlightsSaveCmd)

	publicationsDeleteCmd.Flags().BoolVar(&deleteConfirmed, "yes", false, "confirm the deletion")
	publicationsCmd.AddCommand(publicationsDeleteCmd)

	rootCmd.AddCommand(experiencesCmd, skillsCmd, highlightsCmd, publicationsCmd)
}

// buildExperienceOrder checks that every hidden experience is part of the
// order and that no experience is listed twice.
func buildExperienceOrder(names, hidden []string) (backend.ExperienceOrder, error) {
	order := backend.ExperienceOrder{Order: cleanList(names), Hidden: cleanList(hidden)}
	if len(order.Order) == 0 {
		return order, fmt.Errorf("no experiences given")
	}
	listed := make(map[string]bool, len(order.Order))
	for _, n := range order.Order {
		if listed[n] {
			return order, fmt.Errorf("experience %q listed twice", n)
		}
		listed[n] = true
	}
	for _, h := range order.Hidden {
		if !listed[h] {
			return order, fmt.Errorf("hidden experience %q is not in the order", h)
		}
	}
	return order, nil
}

// parseHighlights returns the non-blank lines of data.
func parseHighlights(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func cleanList(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func printExperienceOrder(w io.Writer, order backend.ExperienceOrder) {
	for i, name := range order.Order {
		if order.IsHidden(name) {
			fmt.Fprintf(w, "%d. %s (hidden)\n", i+1, name)
			continue
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
	}
}

func printSkills(w io.Writer, s backend.Skills) {
	fmt.Fprintf(w, "Expertise:             %s\n", strings.Join(s.Expertise, ", "))
	fmt.Fprintf(w, "Programming Languages: %s\n", strings.Join(s.ProgrammingLanguages, ", "))
	fmt.Fprintf(w, "Technologies:          %s\n", strings.Join(s.Technologies, ", "))
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobseeker/internal/backend"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Keyword validation for the resume customizer",
}

var keywordsValidateCmd = &cobra.Command{
	Use:   "validate <file|->",
	Short: "Send validated keyword groups",
	Long: "Reads keyword groups from a YAML or JSON file keyed by group title:\n\n" +
		"  Backend:\n    keywords: [Go, gRPC]\n    instructions: put Go first\n\n" +
		"and stores them as the validated keywords for the selected job.",
	Args: cobra.ExactArgs(1),
	RunE: runKeywordsValidate,
}

var executorCmd = &cobra.Command{
	Use:   "executor",
	Short: "Insert the validated keywords into the resume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		lines, err := newClient(cfg).RunExecutor(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(lines) == 0 {
			fmt.Fprintln(out, "executor finished without a report")
			return nil
		}
		for _, l := range lines {
			fmt.Fprintln(out, "• "+l)
		}
		return nil
	},
}

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Resume headline",
}

var titleSetCmd = &cobra.Command{
	Use:   "set <title>",
	Short: "Replace the resume headline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		if err := newClient(cfg).UpdateTitle(ctx, title); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "title set to %q\n", title)
		return nil
	},
}

var introductionCmd = &cobra.Command{
	Use:   "introduction",
	Short: "Resume opening line",
}

var introductionSaveCmd = &cobra.Command{
	Use:   "save <text>",
	Short: "Write an opening line into the resume",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return fmt.Errorf("introduction must not be empty")
		}
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		if err := newClient(cfg).SaveIntroduction(ctx, text); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "introduction saved")
		return nil
	},
}

func init() {
	keywordsCmd.AddCommand(keywordsValidateCmd)
	titleCmd.AddCommand(titleSetCmd)
	introductionCmd.AddCommand(introductionSaveCmd)
	rootCmd.AddCommand(keywordsCmd, executorCmd, titleCmd, introductionCmd)
}

type keywordGroupFile struct {
	Keywords     []string `yaml:"keywords"`
	Instructions string   `yaml:"instructions"`
}

// parseKeywordGroups decodes a group-title → group document. YAML is a
// superset of JSON, so both formats go through yaml.v3.
func parseKeywordGroups(data string) (map[string]backend.KeywordGroup, error) {
	var raw map[string]keywordGroupFile
	if err := yaml.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("parse keyword groups: %w", err)
	}

	groups := make(map[string]backend.KeywordGroup, len(raw))
	for title, g := range raw {
		var kws []string
		for _, k := range g.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				kws = append(kws, k)
			}
		}
		if len(kws) == 0 {
			continue
		}
		groups[title] = backend.KeywordGroup{Keywords: kws, Instructions: strings.TrimSpace(g.Instructions)}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no keyword groups with keywords found")
	}
	return groups, nil
}

func runKeywordsValidate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	groups, err := parseKeywordGroups(data)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	ctx, stop := commandContext()
	defer stop()

	if err := newClient(cfg).SaveValidatedKeywords(ctx, groups); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d keyword groups validated\n", len(groups))
	return nil
}

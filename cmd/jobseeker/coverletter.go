package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Read and write the generated cover letter",
	Long:  "The cover letter is generated with `jobseeker run cover-letter`; these commands read and replace its markdown text.",
}

var coverLetterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cover letter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		content, err := newClient(cfg).CoverLetterContent(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	},
}

var coverLetterSaveCmd = &cobra.Command{
	Use:   "save <file|->",
	Short: "Replace the cover letter text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		ctx, stop := commandContext()
		defer stop()

		if err := newClient(cfg).SaveCoverLetter(ctx, content); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cover letter saved")
		return nil
	},
}

func init() {
	coverLetterCmd.AddCommand(coverLetterShowCmd, coverLetterSaveCmd)
	rootCmd.AddCommand(coverLetterCmd)
}

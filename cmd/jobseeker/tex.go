package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobseeker/internal/document"
	"github.com/amishk599/jobseeker/internal/tui"
)

var texDocument string

var texCmd = &cobra.Command{
	Use:   "tex",
	Short: "View and edit the resume TeX source",
	Long:  "Works on the resume source; --document cover-letter switches view and refresh to the cover-letter source, which is read-only.",
}

var texBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the TeX viewer (tab switches documents, e edits the resume)",
	Args:  cobra.NoArgs,
	RunE: withEditor(func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error {
		return tui.RunDocuments(ctx, e)
	}),
}

var texViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the TeX source",
	Args:  cobra.NoArgs,
	RunE: withEditor(func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error {
		content, err := e.View(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}),
}

var texRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch and print the TeX source again",
	Args:  cobra.NoArgs,
	RunE: withEditor(func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error {
		content, err := e.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}),
}

var texSaveCmd = &cobra.Command{
	Use:   "save <file|->",
	Short: "Replace the resume source and recompile it",
	Args:  cobra.ExactArgs(1),
	RunE: withEditor(func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error {
		content, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		if err := e.Save(ctx, content); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "resume saved and recompiled")
		return nil
	}),
}

var texRecompileCmd = &cobra.Command{
	Use:   "recompile",
	Short: "Recompile the resume from its current source",
	Args:  cobra.NoArgs,
	RunE: withEditor(func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error {
		if err := e.Recompile(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "resume recompiled")
		return nil
	}),
}

var texResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the resume to its template and print the template",
	Args:  cobra.NoArgs,
	RunE: withEditor(func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error {
		content, err := e.Reinitialize(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}),
}

func init() {
	texCmd.PersistentFlags().StringVar(&texDocument, "document", string(document.Resume), "document to work on: resume or cover-letter")
	texCmd.AddCommand(texViewCmd, texRefreshCmd, texSaveCmd, texRecompileCmd, texResetCmd, texBrowseCmd)
	rootCmd.AddCommand(texCmd)
}

type editorFunc func(ctx context.Context, cmd *cobra.Command, e *document.Editor, args []string) error

// withEditor builds an editor on the document chosen by --document.
func withEditor(fn editorFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}

		ctx, stop := commandContext()
		defer stop()

		e, err := openEditor(ctx, newClient(cfg), texDocument)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, e, args)
	}
}

func openEditor(ctx context.Context, api document.API, name string) (*document.Editor, error) {
	c, err := document.ParseContext(name)
	if err != nil {
		return nil, err
	}
	e := document.NewEditor(api)
	if err := e.SwitchContext(ctx, c); err != nil {
		return nil, err
	}
	return e, nil
}

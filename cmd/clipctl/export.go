package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export clip history as JSON",
		Long: `Export up to 10000 clips as JSON. Encrypted clips are exported with
their placeholder content only.

Examples:
  clipctl export > backup.json
  clipctl export --output backup.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				views, err := a.svc.Export(ctx)
				if err != nil {
					return err
				}

				if output == "" {
					return writeClipsJSON(cmd.OutOrStdout(), views)
				}

				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := writeClipsJSON(f, views); err != nil {
					_ = f.Close()
					return fmt.Errorf("write export file: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close export file: %w", err)
				}

				printf(cmd.ErrOrStderr(), "Exported %d clips to %s\n", len(views), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func newCleanupCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old unpinned clips",
		Long: `Delete clips older than the given number of days. Pinned clips are never
deleted.

Examples:
  clipctl cleanup
  clipctl cleanup --days 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				n, err := a.svc.Cleanup(ctx, days)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted %d clips\n", n)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "Delete clips older than this many days")

	return cmd
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/clipkeeper/internal/application"
	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captured clips",
		Long: `List clips with pinned clips first, then newest first.

Examples:
  clipctl list
  clipctl list --category url --limit 20
  clipctl list --json`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					views []application.ClipView
					err   error
				)
				if category != "" {
					views, err = a.svc.ListByCategory(ctx, model.Category(category), limit)
				} else {
					views, err = a.svc.ListClips(ctx, limit)
				}
				if err != nil {
					return err
				}

				if asJSON {
					return writeClipsJSON(cmd.OutOrStdout(), views)
				}
				return writeClipsTable(cmd.OutOrStdout(), views)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show clips of this category (url, email, phone, password, code, text)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of clips (default 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search clip content",
		Long: `Search for clips whose content contains the given text, ignoring case.

Examples:
  clipctl search github.com
  clipctl search "meeting notes" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				views, err := a.svc.Search(ctx, args[0], limit)
				if err != nil {
					return err
				}

				if asJSON {
					return writeClipsJSON(cmd.OutOrStdout(), views)
				}
				return writeClipsTable(cmd.OutOrStdout(), views)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of clips (default 50)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

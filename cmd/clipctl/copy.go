package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/clipkeeper/internal/application"
	"github.com/ericfisherdev/clipkeeper/internal/config"
	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

func newCopyCmd(opts *rootOptions) *cobra.Command {
	var (
		passkey    string
		daemonAddr string
		local      bool
	)

	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a clip back to the system clipboard",
		Long: `Copy a clip's content to the system clipboard. Encrypted clips need the
passkey, taken from --passkey, CLIPKEEPER_PASSKEY, or an interactive prompt.

When a clipkeeper daemon is running, the copy goes through its API so the
daemon does not capture the copied value again. If the daemon has passwords
locked, it is unlocked for this copy only. Without a reachable daemon, or
with --local, the clip is copied directly.

Examples:
  clipctl copy 42
  clipctl copy 17 --passkey "$PASSKEY"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid clip id %q", args[0])
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if !local {
				copied, err := copyViaDaemon(ctx, cmd, daemonAddr, passkey, id)
				switch {
				case err == nil && copied:
					printf(cmd.OutOrStdout(), "Copied clip %d via daemon\n", id)
					return nil
				case err == nil:
					return errNotCopied(id)
				case !errors.Is(err, errDaemonUnavailable):
					return err
				}
				slog.Debug("copying without daemon", "error", err)
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := unlock(ctx, cmd, a.svc, passkey); err != nil {
					return err
				}

				ok, err := a.svc.CopyClip(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					return errNotCopied(id)
				}

				printf(cmd.OutOrStdout(), "Copied clip %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&passkey, "passkey", "", "Passkey for encrypted clips")
	cmd.Flags().StringVar(&daemonAddr, "daemon-addr", "", "Daemon API address (default from CLIPKEEPER_LISTEN_ADDR or config)")
	cmd.Flags().BoolVar(&local, "local", false, "Copy directly without contacting the daemon")

	return cmd
}

func copyViaDaemon(ctx context.Context, cmd *cobra.Command, addr, passkey string, id int64) (bool, error) {
	if addr == "" {
		cfg, err := config.Load()
		if err != nil {
			return false, err
		}
		addr = cfg.ListenAddr
	}

	return newDaemonClient(addr).copyClip(ctx, id, func() (string, error) {
		return resolvePasskey(cmd, passkey)
	})
}

func errNotCopied(id int64) error {
	return fmt.Errorf("clip %d could not be copied: it does not exist or is encrypted and locked", id)
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		passkey  string
	)

	cmd := &cobra.Command{
		Use:   "add <content>...",
		Short: "Add a clip manually",
		Long: `Add a clip without going through the clipboard. Arguments are joined with
spaces. Without --category the content is categorized automatically.
Password clips are encrypted when a passkey is configured.

Examples:
  clipctl add https://go.dev
  clipctl add --category password "wifi: hunter2"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				target := model.Category(category)
				if !target.Valid() {
					target = application.Categorize(strings.TrimSpace(content))
				}

				if target == model.CategoryPassword {
					if err := unlock(ctx, cmd, a.svc, passkey); err != nil {
						return err
					}
					if a.svc.IsPasskeySet() && !a.svc.CanEncrypt() {
						return errors.New("passwords are locked: supply --passkey to store this clip encrypted")
					}
				}

				res, err := a.svc.ManualAdd(ctx, content, target)
				if err != nil {
					return err
				}

				switch res.Status {
				case application.AddRejectedBlank:
					return errors.New("content must not be blank")
				case application.AddDuplicate:
					printf(cmd.OutOrStdout(), "Clip already exists\n")
				default:
					printf(cmd.OutOrStdout(), "Added clip %d (%s)\n", res.ID, res.Category)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category to store the clip under")
	cmd.Flags().StringVar(&passkey, "passkey", "", "Passkey used to encrypt password clips")

	return cmd
}

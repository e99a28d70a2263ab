package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/clipkeeper/internal/application"
)

var errWrongPasskey = errors.New("wrong passkey")

// resolvePasskey returns the passkey from the flag, then CLIPKEEPER_PASSKEY,
// then an interactive prompt when stdin is a terminal. An empty result means
// no passkey is available.
func resolvePasskey(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("CLIPKEEPER_PASSKEY"); v != "" {
		return v, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	printf(cmd.ErrOrStderr(), "Passkey: ")
	raw, err := term.ReadPassword(fd)
	printf(cmd.ErrOrStderr(), "\n")
	if err != nil {
		return "", fmt.Errorf("read passkey: %w", err)
	}
	return string(raw), nil
}

// unlock verifies the passkey when one is configured. It is a no-op when no
// passkey exists or none could be obtained.
func unlock(ctx context.Context, cmd *cobra.Command, svc *application.ClipService, flagValue string) error {
	if !svc.IsPasskeySet() {
		return nil
	}

	passkey, err := resolvePasskey(cmd, flagValue)
	if err != nil || passkey == "" {
		return err
	}

	ok, err := svc.VerifyPasskey(ctx, passkey)
	if err != nil {
		return err
	}
	if !ok {
		return errWrongPasskey
	}
	return nil
}

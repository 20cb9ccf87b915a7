package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/mentionly/internal/api"
	"github.com/gravitrone/mentionly/internal/config"
	"github.com/gravitrone/mentionly/internal/mention"
	"github.com/gravitrone/mentionly/internal/sources"
)

// CheckCmd returns the `mentionly check` command.
func CheckCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config and reach the candidate server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.Load()
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no config at %s, run 'mentionly init': %w", config.Path(), err)
				}
				return err
			}

			triggers, err := sources.Build(cfg, sources.Deps{})
			if err != nil {
				return fmt.Errorf("build triggers: %w", err)
			}
			for i, t := range triggers {
				mode := mention.ModeInline
				if t.IsCommand() {
					mode = mention.ModeCommand
				}
				fmt.Fprintf(out, "%-3s %-9s %-7s debounce=%s\n", t.Char, cfg.Triggers[i].Source, mode, t.Debounce)
			}

			if cfg.ServerURL == "" {
				fmt.Fprintln(out, "server: not configured")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			status, err := api.NewClient(cfg.ServerURL, cfg.APIKey).WithTimeout(timeout).Health(ctx)
			if err != nil {
				return fmt.Errorf("server health: %w", err)
			}
			fmt.Fprintf(out, "server: %s (%s)\n", cfg.ServerURL, status)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "health check timeout")
	return cmd
}

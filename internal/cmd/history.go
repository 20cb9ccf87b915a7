package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravitrone/mentionly/internal/ui/components"
)

// HistoryCmd returns the `mentionly history` command.
func HistoryCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List submitted drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			all, err := OpenStore(cfg).List()
			if err != nil {
				return fmt.Errorf("list drafts: %w", err)
			}
			if limit > 0 && len(all) > limit {
				all = all[len(all)-limit:]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				for _, d := range all {
					if err := enc.Encode(d); err != nil {
						return err
					}
				}
				return nil
			}
			if len(all) == 0 {
				fmt.Fprintln(out, "no drafts yet")
				return nil
			}
			for _, d := range all {
				id := d.ID
				if len(id) > 8 {
					id = id[:8]
				}
				fmt.Fprintf(out, "%s  %s  %s\n", id, d.CreatedAt.Local().Format("2006-01-02 15:04"), components.SanitizeOneLine(d.PlainText()))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "show at most n drafts (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print drafts as JSON lines")
	return cmd
}

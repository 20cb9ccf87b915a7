package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/mentionly/internal/mention"
	"github.com/gravitrone/mentionly/internal/sources"
)

// SerializeCmd returns the `mentionly serialize` command.
func SerializeCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "serialize [file]",
		Short: "Convert a JSON content-part array to data parts",
		Long:  "Reads content parts (from file, or stdin when no file is given) and prints the serialized data parts using the configured triggers.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			var parts []mention.ContentPart
			if err := json.Unmarshal(data, &parts); err != nil {
				return fmt.Errorf("parse content parts: %w", err)
			}

			out := cmd.OutOrStdout()
			if plain {
				_, err := fmt.Fprintln(out, mention.PlainText(parts))
				return err
			}

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			triggers, err := sources.Build(cfg, sources.Deps{})
			if err != nil {
				return fmt.Errorf("build triggers: %w", err)
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(mention.Serialize(parts, triggers))
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print plain text instead of data parts")
	return cmd
}

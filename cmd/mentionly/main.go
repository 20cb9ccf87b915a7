package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/gravitrone/mentionly/internal/cmd"
	"github.com/gravitrone/mentionly/internal/logging"
)

type rootFlags struct {
	debug   bool
	logFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func newRootCmd() *cobra.Command {
	var (
		flags  rootFlags
		logger = logging.Discard()
		closer io.Closer
	)

	root := &cobra.Command{
		Use:   "mentionly",
		Short: "mentionly - a mention-aware terminal editor",
		Long:  "mentionly: write drafts with inline @mentions, #file references and /commands resolved from static lists, the file tree or a remote directory.",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if flags.logFile == "" {
				if flags.debug {
					logger = logging.New(os.Stderr, true)
				}
				return nil
			}
			lg, c, err := logging.Open(flags.logFile, flags.debug)
			if err != nil {
				return err
			}
			logger, closer = lg, c
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if closer != nil {
				closer.Close()
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(logger)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "append logs to this file")

	root.AddCommand(cmd.InitCmd())
	root.AddCommand(cmd.CheckCmd())
	root.AddCommand(cmd.SerializeCmd())
	root.AddCommand(cmd.HistoryCmd())
	root.AddCommand(cmd.ServeCmd(func() *log.Logger { return logger }))
	return root
}

func runTUI(logger *log.Logger) error {
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return fmt.Errorf("mentionly needs an interactive terminal (try 'mentionly serialize' for pipes)")
	}

	cfg, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	zones := zone.New()
	defer zones.Close()
	app, err := cmd.NewApp(cfg, cmd.OpenStore(cfg), zones, logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	final, err := p.Run()
	cmd.DisposeModel(final, app)
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

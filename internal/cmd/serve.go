package cmd

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gliderlabs/ssh"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/gravitrone/mentionly/internal/config"
	"github.com/gravitrone/mentionly/internal/drafts"
)

// ServeCmd returns the `mentionly serve` command.
func ServeCmd(logger func() *log.Logger) *cobra.Command {
	var (
		addr    string
		hostKey string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an editor session to each SSH connection",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			lg := logger()
			srv, err := NewSSHServer(addr, hostKey, cfg, OpenStore(cfg), lg)
			if err != nil {
				return err
			}
			lg.Info("ssh server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				return fmt.Errorf("ssh server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":2222", "listen address")
	cmd.Flags().StringVar(&hostKey, "host-key", "", "PEM host key file (generated per run when empty)")
	return cmd
}

// NewSSHServer builds a server running one independent editor per PTY session.
// Drafts from every session go to the shared store.
func NewSSHServer(addr, hostKey string, cfg *config.Config, store *drafts.Store, logger *log.Logger) (*ssh.Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	srv := &ssh.Server{
		Addr:    addr,
		Handler: sessionHandler(cfg, store, logger),
	}
	if hostKey != "" {
		if err := srv.SetOption(ssh.HostKeyFile(hostKey)); err != nil {
			return nil, fmt.Errorf("load host key: %w", err)
		}
	}
	return srv, nil
}

func sessionHandler(cfg *config.Config, store *drafts.Store, logger *log.Logger) ssh.Handler {
	return func(s ssh.Session) {
		ptyReq, winCh, isPty := s.Pty()
		if !isPty {
			fmt.Fprintln(s, "error: PTY required, reconnect with ssh -t")
			s.Exit(1)
			return
		}

		sl := logger.With("user", s.User(), "remote", s.RemoteAddr().String())
		zones := zone.New()
		app, err := NewApp(cfg, store, zones, sl)
		if err != nil {
			fmt.Fprintf(s, "error: %v\n", err)
			s.Exit(1)
			return
		}

		p := tea.NewProgram(app,
			tea.WithInput(s),
			tea.WithOutput(s),
			tea.WithContext(s.Context()),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		go func() {
			p.Send(tea.WindowSizeMsg{Width: ptyReq.Window.Width, Height: ptyReq.Window.Height})
			for win := range winCh {
				p.Send(tea.WindowSizeMsg{Width: win.Width, Height: win.Height})
			}
		}()

		sl.Info("ssh session start", "term", ptyReq.Term)
		final, err := p.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			sl.Warn("ssh session error", "err", err)
		}
		DisposeModel(final, app)
		zones.Close()
		sl.Info("ssh session end")
		s.Exit(0)
	}
}

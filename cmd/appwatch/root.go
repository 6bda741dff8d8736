package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marcin-skalski/appwatch/internal/api"
	"github.com/marcin-skalski/appwatch/internal/config"
	"github.com/marcin-skalski/appwatch/internal/controller"
	"github.com/marcin-skalski/appwatch/internal/logging"
	"github.com/marcin-skalski/appwatch/internal/tui"
)

type app struct {
	configPath string
	serverURL  string
	noTUI      bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "appwatch",
		Short:        "Dashboard for an appointment availability checker",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDashboard(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "appwatch.yaml", "path to config file")
	flags.StringVar(&a.serverURL, "server", "", "check server base URL (overrides server_url)")
	root.Flags().BoolVar(&a.noTUI, "no-tui", false, "run headless, logging to stderr")

	root.AddCommand(
		newStartCmd(a),
		newStopCmd(a),
		newCheckNowCmd(a),
		newStatusCmd(a),
	)
	return root
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.serverURL != "" {
		cfg.ServerURL = a.serverURL
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	a.cfg = cfg
	return nil
}

// fileLogger is the logger for one-shot commands: records go to the log file
// and the terminal is left to the command's own output.
func (a *app) fileLogger() (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.SetupLogger(a.cfg.LogFile, a.cfg.Log.Level, true)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	return logger, closer, nil
}

func (a *app) runDashboard(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Auto-detect TUI capability
	enableTUI := !a.noTUI && os.Getenv("APPWATCH_TUI") != "0" &&
		isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	logger, closer, err := logging.SetupLogger(a.cfg.LogFile, a.cfg.Log.Level, enableTUI)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer closer.Close()

	client := api.NewClient(a.cfg.ServerURL, a.cfg.RequestTimeout, logger)
	ctrl := controller.New(a.cfg, client, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !enableTUI {
		logger.Info("appwatch starting (headless)", "config", a.configPath, "server", a.cfg.ServerURL)
		return ctrl.Run(ctx)
	}

	// TUI mode: controller in the background, dashboard in the foreground.
	// Whichever ends first takes the other down.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("appwatch controller starting", "config", a.configPath, "server", a.cfg.ServerURL)
		return ctrl.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		m := tui.NewModel(ctrl, a.cfg.UI.RefreshInterval, a.cfg.Monitor.DefaultInterval)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(gctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})

	return g.Wait()
}

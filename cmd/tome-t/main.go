package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/tome-t/internal/api"
	"github.com/justyntemme/tome-t/internal/config"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/report"
	"github.com/justyntemme/tome-t/internal/storage"
	"github.com/justyntemme/tome-t/internal/ui"
	"github.com/justyntemme/tome-t/internal/viewer"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tome-t",
	Short: "Terminal client for a Tome ebook and comic server",
	Long: `tome-t browses a Tome library from the terminal and reads its books:
comics and PDFs as page images, EPUBs as reflowed text.

Reading position is reported back to the server as you go.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return runTUI(ui.NewApp(env.deps))
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("url", "s", "", "Server URL, saved to config (e.g. http://myserver:8080)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug output to the log file")

	rootCmd.AddCommand(lsCmd, openCmd, optionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command shares: config, logger, the server client and
// the stores behind the viewers
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *api.Client
	reporter *report.Reporter
	deps     ui.Deps

	closers []io.Closer
}

// setup loads config, applies --url and opens the log and the state store
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Override server URL if provided via flag, and keep it for next time
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		if err := cfg.SetServerURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save server URL to config: %v\n", err)
		}
	}

	e := &env{cfg: cfg}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, closer, err := logging.Open(cfg.LogPath(), debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Discard()
	} else {
		e.closers = append(e.closers, closer)
	}
	e.logger = logger

	var backend viewer.OptionsBackend
	db, err := storage.OpenSQLite(cfg.StateDB)
	if err != nil {
		// Options still work for this run, they just aren't kept
		logger.Warn("state store unavailable, options will not persist", "path", cfg.StateDB, "err", err)
		backend = storage.NewMemory()
	} else {
		backend = db
		e.closers = append(e.closers, db)
	}

	e.client = api.NewClient(cfg.ServerURL)
	e.reporter = report.New(e.client, cfg.ReportTimeoutDuration(), logger)
	e.deps = ui.Deps{
		Config:   cfg,
		Client:   e.client,
		Options:  viewer.NewOptionsStore(backend, logger),
		Notifier: e.reporter,
		Logger:   logger,
	}
	logger.Debug("started", "server", cfg.ServerURL, "config", cfg.Path())
	return e, nil
}

// Close waits for in-flight reports, then releases the store and the log
func (e *env) Close() {
	if e.reporter != nil {
		e.reporter.Wait()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

func runTUI(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

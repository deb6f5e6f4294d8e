package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/dmdash/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Open the views dashboard",
	Long: `Open the interactive dashboard for the configured project.

Each saved view is a tab. The summary line shows the task, annotation,
prediction and box counters for the selected view; press ? for keys.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.RunE = runStart
}

func runStart(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard needs a terminal; use 'dmdash summary' or 'dmdash views list' for plain output")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	ctx := cmd.Context()
	e, err := newEnv(ctx, cfg, logger)
	if err != nil {
		return err
	}

	watcher, err := e.watch()
	if err != nil {
		// Not fatal: the dashboard works, it just won't pick up edits.
		logger.Warn("failed to watch views file", "error", err.Error())
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	app := tui.New(e.shell(), tui.Options{
		SidebarWidth: cfg.TUI.SidebarWidth,
		Theme:        cfg.TUI.Theme,
		Logger:       logger,
	})
	runErr := app.Run(ctx)

	// Pending writes are flushed even when the program failed.
	if err := e.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Some changes were not saved: %v\n", err)
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}

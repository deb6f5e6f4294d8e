package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/logging"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
)

// Options configures the TUI application.
type Options struct {
	SidebarWidth int
	// Theme names a built-in palette; unknown names use the default.
	Theme  string
	Logger *logging.Logger
	// ProgramOptions are appended to the defaults (alt screen, ctx).
	ProgramOptions []tea.ProgramOption
}

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	shell   *dashboard.Shell
	logger  *logging.Logger
	opts    []tea.ProgramOption
}

// New creates a new TUI application over shell.
func New(shell *dashboard.Shell, opts Options) *App {
	styles.SetActiveTheme(styles.ThemeName(opts.Theme))

	logger := logging.OrNop(opts.Logger)
	return &App{
		model: NewModel(shell, ModelOptions{
			SidebarWidth: opts.SidebarWidth,
			Logger:       logger,
		}),
		shell:  shell,
		logger: logger.WithComponent("app"),
		opts:   opts.ProgramOptions,
	}
}

// Run starts the TUI application and blocks until the user quits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, a.opts...)
	a.program = tea.NewProgram(a.model, options...)

	// Store events are published from inside Update as well as from the
	// persistence goroutine; the pump keeps either from blocking on Send.
	pump := newEventPump(a.program.Send)
	unsubscribe := a.shell.Store().Subscribe(pump.push)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	a.logger.Info("dashboard started", "theme", string(styles.ActiveTheme()))
	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	unsubscribe()
	pump.stop()
	a.shell.Stop()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		a.logger.Info("dashboard stopped", "reason", ctx.Err().Error())
		return nil
	}
	if err != nil {
		a.logger.Error("dashboard exited with error", "error", err.Error())
	}
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Altagen/Velt/internal/tui"
	"github.com/Altagen/Velt/pkg/config"
	"github.com/Altagen/Velt/pkg/theme"
	"github.com/Altagen/Velt/pkg/workspace"
)

// shutdownTimeout bounds the final auto-save flush
const shutdownTimeout = 5 * time.Second

func main() {
	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the bubbletea interface and flushes pending saves on exit
func runTUI(
	ctx context.Context,
	ws *workspace.Workspace,
	cfg *config.Config,
	themes *theme.Store,
	t theme.Theme,
	logger *slog.Logger,
) error {
	model := tui.NewModel(tui.Options{
		Workspace: ws,
		Theme:     t,
		Themes:    themes,
		Config:    cfg,
		Logger:    logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Config edits made outside the editor take effect without a restart
	if err := cfg.Watch(func(app config.AppConfig) {
		ws.ApplyConfig(app)
		p.Send(tui.ConfigChangedMsg{App: app})
	}); err != nil {
		logger.Debug("Config watch disabled", "error", err)
	}
	defer cfg.Close()

	_, runErr := p.Run()

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ws.Shutdown(flushCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: pending saves failed: %v\n", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}

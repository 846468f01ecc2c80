package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/goterm"
)

// App owns the terminal screen and drives a Monitor's render loop, trimmed
// from the teacher's multi-view App (pkg/tui/app.go) down to a single
// fixed view with no keyboard-driven view switching: `etactl watch` only
// ever shows the trigger monitor.
type App struct {
	screen  *goterm.Screen
	monitor *Monitor
}

// NewApp initializes the terminal and sizes a Monitor to fill it.
func NewApp() (*App, error) {
	screen, err := goterm.Init()
	if err != nil {
		return nil, fmt.Errorf("tui: failed to initialize terminal: %w", err)
	}
	width, height := screen.Size()
	return &App{screen: screen, monitor: New(0, 0, width, height)}, nil
}

// Monitor returns the app's Monitor so the caller can feed it rows/actions
// each tick.
func (a *App) Monitor() *Monitor {
	return a.monitor
}

// Run renders at the given refresh interval until ctx is cancelled, calling
// refresh before each frame so the caller can pull fresh dispatcher state
// into the monitor.
func (a *App) Run(ctx context.Context, interval time.Duration, refresh func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if refresh != nil {
			refresh()
		}
		if err := a.render(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *App) render() error {
	a.screen.Clear()
	a.monitor.Render(a.screen)
	return a.screen.Show()
}

// Close releases the terminal.
func (a *App) Close() error {
	return a.screen.Close()
}

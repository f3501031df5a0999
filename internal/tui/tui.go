// Package tui is the terminal interface of the client: a login flow and the
// main loop with the record list, the editor and the sync status bar.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/service"
	"github.com/MKhiriev/go-plan-keeper/models"
	tea "github.com/charmbracelet/bubbletea"
)

// statusBuffer bounds status updates waiting for the UI loop.
const statusBuffer = 64

type TUI struct {
	services  *service.ClientServices
	signals   signalEmitter
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

// New creates the UI. Terminal focus changes are reported to signals.
func New(services *service.ClientServices, signals signalEmitter, buildInfo models.AppBuildInfo, log *logger.Logger) *TUI {
	return &TUI{
		services:  services,
		signals:   signals,
		buildInfo: buildInfo,
		logger:    log,
	}
}

// LoginFlow asks for credentials until the session service accepts them.
// notice is shown on the start page. Returns [ErrUserQuit] when the user
// leaves without signing in.
func (t *TUI) LoginFlow(ctx context.Context, notice string) error {
	pages := map[string]tea.Model{
		pageMenu:     NewMenuModel(notice),
		pageLogin:    NewLoginModel(ctx, t.services.Sessions, false),
		pageRegister: NewLoginModel(ctx, t.services.Sessions, true),
	}

	root := NewRootModel(pages, pageMenu, t.buildInfo)
	final, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("login flow: %w", err)
	}

	result, ok := final.(RootModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser || !result.loggedIn {
		return ErrUserQuit
	}
	return nil
}

// MainLoop runs the record list and editor until the user quits or ctx is
// done.
func (t *TUI) MainLoop(ctx context.Context) error {
	coordinator := t.services.Coordinator

	model := newMainModel(ctx, coordinator, t.signals, t.buildInfo)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))

	stop := t.relayStatus(p, coordinator)
	defer stop()

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("main loop: %w", err)
	}
	return nil
}

// relayStatus forwards coordinator status changes to p in order. Listeners
// must not block, so updates go through a buffer and are dropped when it is
// full.
func (t *TUI) relayStatus(p *tea.Program, coordinator service.ClientSaveCoordinator) func() {
	updates := make(chan models.SyncStatus, statusBuffer)
	done := make(chan struct{})

	unsubscribe := coordinator.Subscribe(func(st models.SyncStatus) {
		select {
		case updates <- st:
		default:
			t.logger.Warn().Str("func", "TUI.relayStatus").Str("state", string(st.State)).Msg("status update dropped")
		}
	})

	go func() {
		for {
			select {
			case <-done:
				return
			case st := <-updates:
				p.Send(statusMsg(st))
			}
		}
	}()

	return func() {
		unsubscribe()
		close(done)
	}
}

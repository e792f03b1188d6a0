package ui

import (
	"errors"

	"github.com/charmbracelet/bubbletea"
	"github.com/genricoloni/standby/internal/domain"
	"go.uber.org/zap"
)

// UI runs the standby screen in the terminal
type UI struct {
	logger  *zap.Logger
	bridge  *snapshotBridge
	program *tea.Program
}

// NewUI creates the screen. Snapshots reach it through Publish.
func NewUI(logger *zap.Logger, controls Controls, picker ColorPicker, settings Settings, screen *domain.ScreenResolution) *UI {
	bridge := newSnapshotBridge()
	model := newModel(controls, picker, settings, screen, bridge)

	return &UI{
		logger:  logger,
		bridge:  bridge,
		program: tea.NewProgram(model, tea.WithAltScreen()),
	}
}

// Publish forwards a snapshot to the screen. It never blocks, so it is safe
// to register as a controller observer.
func (u *UI) Publish(s domain.PlaybackSnapshot) {
	u.bridge.publish(s)
}

// Run blocks until the user quits or Quit is called
func (u *UI) Run() error {
	u.logger.Info("Standby screen started")
	defer u.bridge.close()

	if _, err := u.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	u.logger.Info("Standby screen closed")
	return nil
}

// Quit stops the screen and restores the terminal
func (u *UI) Quit() {
	u.bridge.close()
	u.program.Quit()
}

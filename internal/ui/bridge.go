package ui

import (
	"sync"

	"github.com/charmbracelet/bubbletea"
	"github.com/genricoloni/standby/internal/domain"
)

// snapshotMsg carries a controller snapshot into the Bubble Tea loop
type snapshotMsg domain.PlaybackSnapshot

// configReloadMsg signals that the display settings changed on disk
type configReloadMsg struct{}

// snapshotBridge hands snapshots from the controller to the UI without ever
// blocking the controller. Only the latest snapshot is kept.
type snapshotBridge struct {
	ch   chan domain.PlaybackSnapshot
	done chan struct{}
	once sync.Once
}

func newSnapshotBridge() *snapshotBridge {
	return &snapshotBridge{
		ch:   make(chan domain.PlaybackSnapshot, 1),
		done: make(chan struct{}),
	}
}

// publish replaces any snapshot the UI has not picked up yet
func (b *snapshotBridge) publish(s domain.PlaybackSnapshot) {
	for {
		select {
		case <-b.done:
			return
		case b.ch <- s:
			return
		default:
		}

		select {
		case <-b.ch:
		default:
		}
	}
}

// wait returns a command that delivers the next published snapshot
func (b *snapshotBridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.ch:
			return snapshotMsg(s)
		case <-b.done:
			return nil
		}
	}
}

func (b *snapshotBridge) close() {
	b.once.Do(func() { close(b.done) })
}

// watchConfigCmd waits for the next config reload
func watchConfigCmd(changes <-chan struct{}, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changes:
			return configReloadMsg{}
		case <-done:
			return nil
		}
	}
}

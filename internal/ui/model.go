package ui

import (
	"image"

	"github.com/charmbracelet/bubbletea"
	"github.com/genricoloni/standby/internal/domain"
	"github.com/genricoloni/standby/internal/layout"
)

// Controls is the controller surface the screen drives
type Controls interface {
	TogglePlayPause() error
	SkipPrevious() error
	SkipNext() error
	Snapshot() domain.PlaybackSnapshot
}

// ColorPicker extracts an accent color from artwork
type ColorPicker interface {
	AccentColor(img image.Image) (string, error)
}

// Settings provides the live-reloadable display configuration
type Settings interface {
	Display() domain.DisplaySettings
	Changes() <-chan struct{}
}

// commandErrMsg reports a failed transport command
type commandErrMsg struct{ err error }

// artworkMsg carries an encoded cover for the snapshot artwork it was made from
type artworkMsg struct {
	src     image.Image
	columns int
	encoded string
	color   string
}

// Model is the Bubble Tea model of the standby screen
type Model struct {
	controls Controls
	picker   ColorPicker
	settings Settings
	screen   *domain.ScreenResolution
	bridge   *snapshotBridge

	snapshot domain.PlaybackSnapshot
	display  domain.DisplaySettings
	width    int
	height   int

	supportsKitty  bool
	artworkEncoded string      // Kitty protocol-encoded cover
	artworkSrc     image.Image // Snapshot artwork the encoding belongs to
	artworkPending image.Image // Snapshot artwork currently being encoded
	accent         string      // Color extracted from the cover in auto mode

	lastError error
	showHelp  bool
}

func newModel(controls Controls, picker ColorPicker, settings Settings, screen *domain.ScreenResolution, bridge *snapshotBridge) Model {
	snapshot := controls.Snapshot()
	return Model{
		controls:       controls,
		picker:         picker,
		settings:       settings,
		screen:         screen,
		bridge:         bridge,
		snapshot:       snapshot,
		display:        settings.Display(),
		supportsKitty:  supportsKittyGraphics(),
		artworkPending: snapshot.Artwork,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bridge.wait(),
		watchConfigCmd(m.settings.Changes(), m.bridge.done),
		m.renderArtworkCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			return m, commandCmd(m.controls.TogglePlayPause)
		case "n", "right":
			return m, commandCmd(m.controls.SkipNext)
		case "b", "left":
			return m, commandCmd(m.controls.SkipPrevious)
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.snapshot = domain.PlaybackSnapshot(msg)
		m.lastError = nil
		art := m.snapshot.Artwork
		if art != m.artworkSrc && (art == nil || art != m.artworkPending) {
			m.artworkEncoded = ""
			m.artworkSrc = nil
			m.accent = ""
			m.artworkPending = art
			return m, tea.Batch(m.bridge.wait(), m.renderArtworkCmd())
		}
		return m, m.bridge.wait()

	case artworkMsg:
		// Drop results for a cover that has since been replaced
		if msg.src != m.snapshot.Artwork || msg.columns != m.display.ArtworkColumns {
			return m, nil
		}
		m.artworkSrc = msg.src
		m.artworkPending = nil
		m.artworkEncoded = msg.encoded
		m.accent = msg.color
		return m, nil

	case configReloadMsg:
		prev := m.display
		m.display = m.settings.Display()
		cmds := []tea.Cmd{watchConfigCmd(m.settings.Changes(), m.bridge.done)}
		if prev.ArtworkColumns != m.display.ArtworkColumns ||
			prev.ArtworkEnabled != m.display.ArtworkEnabled ||
			prev.ColorMode != m.display.ColorMode {
			m.artworkEncoded = ""
			m.artworkSrc = nil
			m.artworkPending = m.snapshot.Artwork
			cmds = append(cmds, m.renderArtworkCmd())
		}
		return m, tea.Batch(cmds...)

	case commandErrMsg:
		m.lastError = msg.err
		return m, nil
	}

	return m, nil
}

// orientation resolves the layout for the current terminal
func (m Model) orientation() domain.Orientation {
	return layout.Resolve(m.display.Layout, m.screen, m.width, m.height)
}

// color returns the accent in auto mode once extracted, else the configured color
func (m Model) color() string {
	if m.display.ColorMode == "auto" && m.accent != "" {
		return m.accent
	}
	return m.display.Color
}

// renderArtworkCmd encodes the current cover off the UI loop
func (m Model) renderArtworkCmd() tea.Cmd {
	img := m.snapshot.Artwork
	if img == nil || !m.display.ArtworkEnabled {
		return nil
	}

	columns := m.display.ArtworkColumns
	withKitty := m.supportsKitty
	withColor := m.display.ColorMode == "auto" && m.picker != nil
	picker := m.picker

	return func() tea.Msg {
		msg := artworkMsg{src: img, columns: columns}
		if withKitty {
			if encoded, err := encodeArtworkForKitty(img, columns); err == nil {
				msg.encoded = encoded
			}
		}
		if withColor {
			if c, err := picker.AccentColor(img); err == nil {
				msg.color = c
			}
		}
		return msg
	}
}

func commandCmd(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return commandErrMsg{err: err}
		}
		return nil
	}
}

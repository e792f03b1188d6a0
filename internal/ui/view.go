package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/genricoloni/standby/internal/domain"
)

const (
	portraitTextWidth  = 40
	landscapeTextWidth = 36
	progressTimeWidth  = 12 // " MM:SS/MM:SS"
)

// styles derived from the current accent color
type styles struct {
	clock     lipgloss.Style
	highlight lipgloss.Style
	title     lipgloss.Style
	muted     lipgloss.Style
	dim       lipgloss.Style
	track     lipgloss.Style
	errorText lipgloss.Style
	frame     lipgloss.Style
}

func newStyles(color string) styles {
	accent := lipgloss.Color(color)
	return styles{
		clock:     lipgloss.NewStyle().Foreground(accent).Bold(true),
		highlight: lipgloss.NewStyle().Foreground(accent),
		title:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		track:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
	}
}

func (m Model) View() string {
	st := newStyles(m.color())

	var body string
	if m.orientation() == domain.OrientationLandscape {
		body = m.landscapeView(st)
	} else {
		body = m.portraitView(st)
	}

	full := lipgloss.JoinVertical(lipgloss.Center, st.frame.Render(body), "", m.helpView(st))

	// Without a cover on screen, make sure no old image stays placed
	if m.supportsKitty && !m.showsKittyArtwork() {
		full = kittyDeleteAll + full
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		full,
	)
}

// portraitView stacks clock, cover, track info, progress and controls
func (m Model) portraitView(st styles) string {
	parts := []string{
		st.clock.Render(m.snapshot.ClockText()),
		"",
	}
	if art := m.artworkView(st); art != "" {
		parts = append(parts, art, "")
	}
	parts = append(parts,
		m.infoView(st, portraitTextWidth, lipgloss.Center),
		"",
		m.progressView(st, portraitTextWidth),
		"",
		m.controlsView(st),
	)
	if m.lastError != nil {
		parts = append(parts, "", m.errorView(st, portraitTextWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

// landscapeView puts the cover beside the track info, under the clock
func (m Model) landscapeView(st styles) string {
	parts := []string{
		m.infoView(st, landscapeTextWidth, lipgloss.Left),
		"",
		m.progressView(st, landscapeTextWidth),
		"",
		m.controlsView(st),
	}
	if m.lastError != nil {
		parts = append(parts, "", m.errorView(st, landscapeTextWidth))
	}
	right := lipgloss.JoinVertical(lipgloss.Left, parts...)

	row := right
	if art := m.artworkView(st); art != "" {
		row = lipgloss.JoinHorizontal(lipgloss.Center, art, "    ", right)
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		st.clock.Render(m.snapshot.ClockText()),
		"",
		row,
	)
}

func (m Model) showsKittyArtwork() bool {
	return m.display.ArtworkEnabled && m.supportsKitty && m.artworkEncoded != ""
}

// artworkView reserves a columns×rows cell box for the cover. Square art
// fills about half as many rows as columns.
func (m Model) artworkView(st styles) string {
	if !m.display.ArtworkEnabled {
		return ""
	}

	columns := m.display.ArtworkColumns
	rows := max(columns/2, 1)
	box := lipgloss.NewStyle().Width(columns).Height(rows)

	if m.showsKittyArtwork() {
		return box.Render(m.artworkEncoded)
	}

	// Music note placeholder when there is no cover or the terminal can't draw it
	return box.
		Width(columns-2).
		Height(rows-2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(st.dim.Render("♪"))
}

func (m Model) infoView(st styles, width int, align lipgloss.Position) string {
	lines := []string{
		st.title.Render(truncate(m.snapshot.Title, width)),
		st.muted.Render(truncate(m.snapshot.Artist, width)),
	}
	if m.snapshot.Album != "" {
		lines = append(lines, st.dim.Render(truncate(m.snapshot.Album, width)))
	}
	return lipgloss.NewStyle().Width(width).Align(align).Render(strings.Join(lines, "\n"))
}

// progressView renders the bar with elapsed/total in MM:SS
func (m Model) progressView(st styles, width int) string {
	barWidth := max(width-progressTimeWidth, 1)
	filled := int(float64(barWidth) * m.snapshot.Progress())
	filled = min(max(filled, 0), barWidth)

	bar := st.highlight.Render(strings.Repeat("█", filled)) +
		st.track.Render(strings.Repeat("─", barWidth-filled))

	return fmt.Sprintf("%s %s/%s",
		bar,
		st.highlight.Render(formatTime(m.snapshot.Elapsed)),
		st.highlight.Render(formatTime(m.snapshot.Duration)),
	)
}

// controlsView shows the transport row; the center glyph follows isPlaying
func (m Model) controlsView(st styles) string {
	playPause := "▶"
	if m.snapshot.IsPlaying {
		playPause = "⏸"
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		st.muted.Render("⏮"),
		"     ",
		st.highlight.Bold(true).Render(playPause),
		"     ",
		st.muted.Render("⏭"),
	)
}

func (m Model) errorView(st styles, width int) string {
	if m.lastError == nil {
		return ""
	}
	return st.errorText.Render(truncate(m.lastError.Error(), width))
}

func (m Model) helpView(st styles) string {
	if !m.showHelp {
		return st.dim.Render("Press ? for help")
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		"Play/Pause: "+st.highlight.Render("space/p"),
		"  Next: "+st.highlight.Render("n/→"),
		"  Previous: "+st.highlight.Render("b/←"),
		"  Quit: "+st.highlight.Render("q"),
		"  Hide: "+st.highlight.Render("?"),
	)
}

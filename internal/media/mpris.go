//go:build linux
// +build linux

package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/standby/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisPath       = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	noTrackPath     = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
)

var errNotConnected = errors.New("not connected to the session bus")

// MprisService exposes the session's MPRIS media player as a domain.MediaService
type MprisService struct {
	logger    *zap.Logger
	fetcher   domain.Fetcher
	processor domain.ArtworkProcessor
	dial      func() (DBusClient, error)

	mu              sync.RWMutex
	conn            DBusClient        // Interface for testability
	playerNames     map[string]string // Maps unique bus names (:1.45) to well-known names (org.mpris.MediaPlayer2.spotify)
	activePlayer    string            // Well-known name of the player being mirrored
	lastDropWarning time.Time         // Rate limiting for "channel full" warnings

	events  chan domain.MediaEvent
	signals chan *dbus.Signal
	cancel  context.CancelFunc
	wg      sync.WaitGroup // Tracks the signal goroutine
}

// NewMprisService creates a service that connects to the session bus on Start
func NewMprisService(logger *zap.Logger, fetcher domain.Fetcher, processor domain.ArtworkProcessor) *MprisService {
	return &MprisService{
		logger:      logger,
		fetcher:     fetcher,
		processor:   processor,
		dial:        func() (DBusClient, error) { return NewStdDBusClient() },
		playerNames: make(map[string]string),
	}
}

// Start connects to the session bus and selects the player to mirror
func (m *MprisService) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	conn, err := m.dial()
	if err != nil {
		m.logger.Error("Failed to connect to session bus", zap.Error(err))
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	// Check if we were stopped while connecting to D-Bus
	if err := ctx.Err(); err != nil {
		if cerr := conn.Close(); cerr != nil {
			m.logger.Warn("Failed to close D-Bus connection", zap.Error(cerr))
		}
		return err
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	if err := m.detectExistingPlayers(); err != nil {
		m.logger.Warn("Failed to detect existing players", zap.Error(err))
	}

	m.logger.Info("MPRIS media service started", zap.String("player", m.getActivePlayer()))
	return nil
}

// Close unsubscribes and closes the bus connection
func (m *MprisService) Close() error {
	err := m.Unsubscribe()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		err = multierr.Append(err, m.conn.Close())
		m.conn = nil
	}

	m.logger.Info("MPRIS media service closed")
	return err
}

// Subscribe starts translating MPRIS signals into media events
func (m *MprisService) Subscribe(ctx context.Context) (<-chan domain.MediaEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil, errNotConnected
	}
	if m.cancel != nil {
		return nil, errors.New("already subscribed")
	}

	if err := m.conn.AddMatchSignal(propertiesChangedRule()...); err != nil {
		m.logger.Error("Failed to add match signal", zap.Error(err))
		return nil, fmt.Errorf("failed to add match signal: %w", err)
	}

	// Track new/removed players dynamically
	if err := m.conn.AddMatchSignal(nameOwnerChangedRule()...); err != nil {
		m.logger.Warn("Failed to add NameOwnerChanged match signal", zap.Error(err))
	}

	signals := make(chan *dbus.Signal, 10)
	m.conn.Signal(signals)

	subCtx, cancel := context.WithCancel(ctx)
	m.events = make(chan domain.MediaEvent, 16)
	m.signals = signals
	m.cancel = cancel

	m.wg.Add(1)
	go m.monitorSignals(subCtx, signals)

	m.logger.Info("Subscribed to MPRIS signals")
	return m.events, nil
}

// Unsubscribe stops signal delivery and closes the events channel
func (m *MprisService) Unsubscribe() error {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.cancel = nil
	m.mu.Unlock()

	// Wait for the signal goroutine before closing the channel it sends on
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.conn != nil {
		m.conn.RemoveSignal(m.signals)
		err = multierr.Combine(
			m.conn.RemoveMatchSignal(propertiesChangedRule()...),
			m.conn.RemoveMatchSignal(nameOwnerChangedRule()...),
		)
	}
	close(m.events)
	m.events = nil
	m.signals = nil

	m.logger.Info("Unsubscribed from MPRIS signals")
	return err
}

// PlaybackState returns the active player's status, Stopped when there is none
func (m *MprisService) PlaybackState() (domain.PlaybackState, error) {
	conn, player := m.target()
	if conn == nil || player == "" {
		return domain.StateStopped, nil
	}

	variant, err := conn.GetProperty(player, mprisPath, playerInterface+".PlaybackStatus")
	if err != nil {
		return domain.StateStopped, fmt.Errorf("failed to get playback status: %w", err)
	}

	status, ok := variant.Value().(string)
	if !ok {
		return domain.StateStopped, fmt.Errorf("invalid playback status format")
	}
	return parseStatus(status), nil
}

// NowPlayingItem returns the active player's current track, nil when idle
func (m *MprisService) NowPlayingItem() (*domain.MediaItem, error) {
	conn, player := m.target()
	if conn == nil || player == "" {
		return nil, nil
	}

	variant, err := conn.GetProperty(player, mprisPath, playerInterface+".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	// SAFE CAST: Some players may return nil or unexpected types if not playing anything
	metadata, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		m.logger.Debug("Metadata variant is not a map, treating as idle", zap.String("player", player))
		return nil, nil
	}

	return m.parseMetadata(metadata), nil
}

// ElapsedPosition returns the active player's position
func (m *MprisService) ElapsedPosition() (time.Duration, error) {
	conn, player := m.target()
	if conn == nil || player == "" {
		return 0, nil
	}

	variant, err := conn.GetProperty(player, mprisPath, playerInterface+".Position")
	if err != nil {
		return 0, fmt.Errorf("failed to get position: %w", err)
	}

	us, ok := microseconds(variant.Value())
	if !ok {
		return 0, fmt.Errorf("invalid position format: %T", variant.Value())
	}
	return time.Duration(us) * time.Microsecond, nil
}

// Artwork fetches the item's art URL and crops it to a square
func (m *MprisService) Artwork(ctx context.Context, item *domain.MediaItem, size int) (image.Image, error) {
	if item == nil || item.ArtURL == "" {
		return nil, errors.New("no artwork URL")
	}

	data, err := m.fetcher.Fetch(ctx, item.ArtURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}

	img, err := m.processor.Square(ctx, data, size)
	if err != nil {
		return nil, fmt.Errorf("failed to process artwork: %w", err)
	}
	return img, nil
}

func (m *MprisService) Play() error           { return m.call("Play") }
func (m *MprisService) Pause() error          { return m.call("Pause") }
func (m *MprisService) SkipToPrevious() error { return m.call("Previous") }
func (m *MprisService) SkipToNext() error     { return m.call("Next") }

func (m *MprisService) call(method string) error {
	conn, player := m.target()
	if conn == nil || player == "" {
		return domain.ErrNoPlayer
	}
	if err := conn.Call(player, mprisPath, playerInterface+"."+method); err != nil {
		return fmt.Errorf("%s on %s failed: %w", method, player, err)
	}
	return nil
}

// target returns the connection and player reads and commands go to
func (m *MprisService) target() (DBusClient, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn, m.activePlayer
}

// detectExistingPlayers queries D-Bus for currently running MPRIS players
// and picks a playing one to mirror, falling back to the first found
func (m *MprisService) detectExistingPlayers() error {
	names, err := m.conn.ListNames()
	if err != nil {
		return fmt.Errorf("failed to list bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		players = append(players, name)
		m.logger.Info("Detected MPRIS player", zap.String("name", name))

		// Get the unique bus name for this well-known name
		uniqueName, err := m.conn.GetNameOwner(name)
		if err == nil {
			m.mu.Lock()
			m.playerNames[uniqueName] = name
			m.mu.Unlock()
			m.logger.Debug("Mapped player name",
				zap.String("unique", uniqueName),
				zap.String("wellKnown", name))
		}
	}

	m.setActivePlayer(m.pickPlayer(players))
	m.logger.Info("Player detection complete", zap.Int("count", len(players)))
	return nil
}

// pickPlayer prefers a player that is currently playing
func (m *MprisService) pickPlayer(players []string) string {
	for _, name := range players {
		variant, err := m.conn.GetProperty(name, mprisPath, playerInterface+".PlaybackStatus")
		if err != nil {
			continue
		}
		if status, ok := variant.Value().(string); ok && parseStatus(status).IsPlaying() {
			return name
		}
	}
	if len(players) > 0 {
		return players[0]
	}
	return ""
}

// monitorSignals listens for D-Bus signals and processes them
func (m *MprisService) monitorSignals(ctx context.Context, signals <-chan *dbus.Signal) {
	defer m.wg.Done() // Signal completion when goroutine exits

	m.logger.Info("Signal monitoring goroutine started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Signal monitoring goroutine stopped")
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			// Handle different signal types
			if sig.Name == "org.freedesktop.DBus.NameOwnerChanged" {
				m.handleNameOwnerChanged(sig)
			} else {
				m.handleSignal(sig)
			}
		}
	}
}

// handleNameOwnerChanged processes NameOwnerChanged signals to track player lifecycle
func (m *MprisService) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}

	name, ok := sig.Body[0].(string)
	if !ok || !strings.HasPrefix(name, mprisPrefix) {
		return // Not an MPRIS player
	}

	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	switch {
	case newOwner != "" && oldOwner == "":
		m.mu.Lock()
		m.playerNames[newOwner] = name
		m.mu.Unlock()

		m.logger.Info("New MPRIS player detected",
			zap.String("player", name),
			zap.String("unique", newOwner))

		if m.getActivePlayer() == "" {
			m.switchPlayer(name)
		}

	case newOwner == "" && oldOwner != "":
		m.mu.Lock()
		delete(m.playerNames, oldOwner)
		remaining := make([]string, 0, len(m.playerNames))
		for _, wellKnown := range m.playerNames {
			remaining = append(remaining, wellKnown)
		}
		m.mu.Unlock()

		m.logger.Info("MPRIS player removed",
			zap.String("player", name),
			zap.String("unique", oldOwner))

		if m.getActivePlayer() == name {
			m.switchPlayer(m.pickPlayer(remaining))
		}

	case newOwner != "" && oldOwner != "":
		// Ownership transfer (rare), update the mapping
		m.mu.Lock()
		delete(m.playerNames, oldOwner)
		m.playerNames[newOwner] = name
		m.mu.Unlock()

		m.logger.Debug("MPRIS player ownership changed",
			zap.String("player", name),
			zap.String("oldUnique", oldOwner),
			zap.String("newUnique", newOwner))
	}
}

// handleSignal processes a PropertiesChanged signal.
// It has 3 arguments: interface name, changed properties, invalidated properties.
func (m *MprisService) handleSignal(sig *dbus.Signal) {
	if sig.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" {
		return
	}

	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != playerInterface {
		return
	}

	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	playerName := m.getPlayerName(sig.Sender)

	m.logger.Debug("Received PropertiesChanged signal",
		zap.String("sender", sig.Sender),
		zap.String("player", playerName),
		zap.Int("properties", len(changedProps)))

	metadataVariant, hasMetadata := changedProps["Metadata"]
	statusVariant, hasStatus := changedProps["PlaybackStatus"]

	if !hasMetadata && !hasStatus {
		return
	}

	if hasMetadata {
		if _, ok := metadataVariant.Value().(map[string]dbus.Variant); !ok {
			m.logger.Warn("Invalid metadata format in signal, ignoring")
			return
		}
	}

	var status string
	if hasStatus {
		status, ok = statusVariant.Value().(string)
		if !ok {
			m.logger.Warn("Invalid playback status format in signal, ignoring")
			return
		}
	}

	active := m.getActivePlayer()
	if active != "" && playerName != active {
		// Another player only takes over the screen once it starts playing
		if hasStatus && parseStatus(status).IsPlaying() {
			m.logger.Info("Switching to newly playing player",
				zap.String("from", active),
				zap.String("to", playerName))
			m.switchPlayer(playerName)
		}
		return
	}
	if active == "" {
		m.setActivePlayer(playerName)
	}

	if hasMetadata {
		m.emit(domain.MediaEvent{Kind: domain.TrackChanged, Player: playerName})
	}
	if hasStatus {
		m.emit(domain.MediaEvent{Kind: domain.PlaybackStateChanged, Player: playerName})
	}
}

// switchPlayer mirrors a different player and reports both of its states
func (m *MprisService) switchPlayer(name string) {
	m.setActivePlayer(name)
	m.emit(domain.MediaEvent{Kind: domain.TrackChanged, Player: name})
	m.emit(domain.MediaEvent{Kind: domain.PlaybackStateChanged, Player: name})
}

// emit sends without blocking. Events only tell the controller to re-read
// state, so dropping one behind a full buffer loses nothing.
func (m *MprisService) emit(ev domain.MediaEvent) {
	m.mu.RLock()
	events := m.events
	m.mu.RUnlock()
	if events == nil {
		return
	}

	select {
	case events <- ev:
		m.logger.Debug("Media event emitted",
			zap.Stringer("kind", ev.Kind),
			zap.String("player", ev.Player))
	default:
		m.logChannelFullWarning()
	}
}

// parseMetadata converts MPRIS metadata to a media item, nil when no track is loaded
func (m *MprisService) parseMetadata(metadata map[string]dbus.Variant) *domain.MediaItem {
	var item domain.MediaItem

	if idVar, ok := metadata["mpris:trackid"]; ok {
		switch id := idVar.Value().(type) {
		case dbus.ObjectPath:
			item.ID = string(id)
		case string:
			item.ID = id
		}
	}
	if item.ID == noTrackPath {
		return nil
	}

	// Extract title
	if titleVar, ok := metadata["xesam:title"]; ok {
		if title, ok := titleVar.Value().(string); ok {
			item.Title = title
		}
	}

	// Extract artist (can be an array)
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			if len(artists) > 0 {
				item.Artist = artists[0]
			}
		case string:
			item.Artist = artists
		default:
			// Some non-compliant players may use unexpected types
			m.logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}

	// Extract album
	if albumVar, ok := metadata["xesam:album"]; ok {
		if album, ok := albumVar.Value().(string); ok {
			item.Album = album
		}
	}

	if lengthVar, ok := metadata["mpris:length"]; ok {
		if us, ok := microseconds(lengthVar.Value()); ok && us > 0 {
			item.Duration = time.Duration(us) * time.Microsecond
		}
	}

	// Extract art URL
	if artVar, ok := metadata["mpris:artUrl"]; ok {
		if artURL, ok := artVar.Value().(string); ok {
			if artURL == "" {
				// Some players (browsers, local files) may send empty artUrl
				m.logger.Debug("Empty artUrl received",
					zap.String("title", item.Title),
					zap.String("artist", item.Artist))
			} else {
				item.ArtURL = artURL
			}
		}
	}

	if item.ID == "" && item.Title == "" && item.Artist == "" && item.Duration == 0 {
		return nil
	}
	return &item
}

// getPlayerName returns the well-known player name for a unique bus name
// Falls back to the unique name if no mapping exists
func (m *MprisService) getPlayerName(uniqueName string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if wellKnown, ok := m.playerNames[uniqueName]; ok {
		return wellKnown
	}
	return uniqueName
}

func (m *MprisService) getActivePlayer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activePlayer
}

func (m *MprisService) setActivePlayer(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activePlayer = name
}

// logChannelFullWarning logs a warning about channel being full, but rate-limited
// to avoid log spam during rapid track changes (e.g., fast skipping)
func (m *MprisService) logChannelFullWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit to max one warning per 5 seconds
	const warningInterval = 5 * time.Second
	now := time.Now()

	if now.Sub(m.lastDropWarning) >= warningInterval {
		m.logger.Warn("Events channel full, dropping media event",
			zap.String("note", "The controller re-reads full state on the next event."))
		m.lastDropWarning = now
	}
}

func propertiesChangedRule() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(mprisPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	}
}

func nameOwnerChangedRule() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	}
}

func parseStatus(status string) domain.PlaybackState {
	switch status {
	case "Playing":
		return domain.StatePlaying
	case "Paused":
		return domain.StatePaused
	default:
		return domain.StateStopped
	}
}

// microseconds accepts the integer types players use for mpris:length and Position
func microseconds(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

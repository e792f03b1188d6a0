package domain

import (
	"errors"
	"image"
	"time"
)

// ErrNoPlayer is returned by media commands when no player owns the session
var ErrNoPlayer = errors.New("no active media player")

// PlaybackState represents the current state of the media player
type PlaybackState string

const (
	// StatePlaying indicates the media is currently playing
	StatePlaying PlaybackState = "Playing"
	// StatePaused indicates the media is paused
	StatePaused PlaybackState = "Paused"
	// StateStopped indicates the media is stopped or nothing is loaded
	StateStopped PlaybackState = "Stopped"
)

// IsPlaying reports whether the state is actively playing.
// Paused, stopped and anything unknown map to false.
func (s PlaybackState) IsPlaying() bool {
	return s == StatePlaying
}

// MediaItem is the track currently loaded by the media player
type MediaItem struct {
	// ID is the player-specific track identifier (mpris:trackid)
	ID string
	// Title of the track, empty when unknown
	Title string
	// Artist name, empty when unknown
	Artist string
	// Album name, empty when unknown
	Album string
	// Duration of the track, zero when unknown
	Duration time.Duration
	// ArtURL is the URL or local path to the album artwork
	ArtURL string
}

// EventKind identifies a media service notification
type EventKind int

const (
	// TrackChanged is emitted when the current item changes
	TrackChanged EventKind = iota + 1
	// PlaybackStateChanged is emitted when play/pause/stop state changes
	PlaybackStateChanged
)

func (k EventKind) String() string {
	switch k {
	case TrackChanged:
		return "TrackChanged"
	case PlaybackStateChanged:
		return "PlaybackStateChanged"
	default:
		return "Unknown"
	}
}

// MediaEvent is a typed notification from the media service
type MediaEvent struct {
	Kind EventKind
	// Player is the bus name of the player that caused the event, for logging
	Player string
}

// PlaybackSnapshot is everything the standby screen displays at one point in time.
// It is replaced wholesale on every refresh and handed out by value.
type PlaybackSnapshot struct {
	WallClock time.Time
	IsPlaying bool
	HasTrack  bool
	Title     string
	Artist    string
	Album     string
	Artwork   image.Image
	Duration  time.Duration
	Elapsed   time.Duration
}

// IdleSnapshot returns the snapshot shown when no track is loaded
func IdleSnapshot(placeholder string, now time.Time) PlaybackSnapshot {
	return PlaybackSnapshot{
		WallClock: TruncateToMinute(now),
		Title:     placeholder,
		Artist:    placeholder,
	}
}

// ClockText renders the wall clock as zero-padded 24-hour HH:MM
func (s PlaybackSnapshot) ClockText() string {
	return s.WallClock.Format("15:04")
}

// Progress returns elapsed/duration in [0, 1]
func (s PlaybackSnapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Elapsed) / float64(s.Duration)
}

// TruncateToMinute drops seconds and below in the time's own location
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// ClampElapsed bounds a position to [0, duration]
func ClampElapsed(pos, duration time.Duration) time.Duration {
	if pos < 0 || duration <= 0 {
		return 0
	}
	if pos > duration {
		return duration
	}
	return pos
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}

// Orientation selects the layout variant of the standby screen
type Orientation string

const (
	OrientationAuto      Orientation = "auto"
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Orientation returns landscape for screens wider than tall
func (r ScreenResolution) Orientation() Orientation {
	if r.Height > r.Width {
		return OrientationPortrait
	}
	return OrientationLandscape
}

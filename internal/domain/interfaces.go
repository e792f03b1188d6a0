package domain

import (
	"context"
	"image"
	"time"
)

// MediaService is the system media player as seen by the standby screen.
// Reads are cheap property lookups; commands are fire-and-forget.
//
//go:generate mockgen -destination=mocks/media_service_mock.go -package=mocks github.com/genricoloni/standby/internal/domain MediaService
type MediaService interface {
	// PlaybackState returns the current play state of the active player
	PlaybackState() (PlaybackState, error)

	// NowPlayingItem returns the current item, or nil when nothing is loaded
	NowPlayingItem() (*MediaItem, error)

	// ElapsedPosition returns the playback position of the current item
	ElapsedPosition() (time.Duration, error)

	// Artwork returns the item's artwork cropped to a size x size square
	Artwork(ctx context.Context, item *MediaItem, size int) (image.Image, error)

	Play() error
	Pause() error
	SkipToPrevious() error
	SkipToNext() error

	// Subscribe registers the single listener for TrackChanged and
	// PlaybackStateChanged events
	Subscribe(ctx context.Context) (<-chan MediaEvent, error)

	// Unsubscribe removes the listener registered by Subscribe.
	// It is a no-op when nothing is subscribed.
	Unsubscribe() error
}

// Ticker delivers periodic ticks until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop() error
}

// Scheduler creates periodic tickers
type Scheduler interface {
	NewTicker(interval time.Duration) (Ticker, error)
}

// Clock provides the current wall time
type Clock interface {
	Now() time.Time
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ArtworkProcessor turns raw artwork bytes into display-ready images
type ArtworkProcessor interface {
	// Square decodes the image and center-crops it to size x size pixels
	Square(ctx context.Context, imageData []byte, size int) (image.Image, error)

	// AccentColor picks a readable highlight color from the image as #rrggbb
	AccentColor(img image.Image) (string, error)
}

// IdleInhibitor keeps the display from dimming while the standby screen is up
type IdleInhibitor interface {
	Inhibit(ctx context.Context) error
	Release(ctx context.Context) error
}

// Config defines the interface for application configuration
type Config interface {
	// TickInterval is the clock and elapsed-position refresh period
	TickInterval() time.Duration

	// ArtworkSize is the square pixel size artwork is requested at
	ArtworkSize() int

	// Placeholder is shown for an unknown title or artist
	Placeholder() string

	// KeepAwake enables screen-dimming suppression while active
	KeepAwake() bool

	// Display returns the live-reloadable rendering settings
	Display() DisplaySettings
}

// DisplaySettings holds the rendering options that can change at runtime
type DisplaySettings struct {
	Color          string
	ColorMode      string
	Layout         Orientation
	ArtworkEnabled bool
	ArtworkColumns int
}

//go:build !linux
// +build !linux

package media

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/genricoloni/standby/internal/domain"
	"go.uber.org/zap"
)

// MprisService stub for non-Linux platforms. It always reports the idle state.
type MprisService struct {
	logger *zap.Logger

	mu     sync.Mutex
	events chan domain.MediaEvent
}

// NewMprisService creates a stub service on non-Linux platforms
func NewMprisService(logger *zap.Logger, _ domain.Fetcher, _ domain.ArtworkProcessor) *MprisService {
	return &MprisService{logger: logger}
}

// Start logs that MPRIS is unavailable; the screen stays idle
func (m *MprisService) Start(ctx context.Context) error {
	m.logger.Warn("MPRIS media control is only supported on Linux systems, showing idle screen")
	return nil
}

// Close is a no-op on non-Linux platforms
func (m *MprisService) Close() error {
	return m.Unsubscribe()
}

func (m *MprisService) PlaybackState() (domain.PlaybackState, error) {
	return domain.StateStopped, nil
}

func (m *MprisService) NowPlayingItem() (*domain.MediaItem, error) { return nil, nil }

func (m *MprisService) ElapsedPosition() (time.Duration, error) { return 0, nil }

func (m *MprisService) Artwork(context.Context, *domain.MediaItem, int) (image.Image, error) {
	return nil, errors.New("artwork not supported on this platform")
}

func (m *MprisService) Play() error           { return domain.ErrNoPlayer }
func (m *MprisService) Pause() error          { return domain.ErrNoPlayer }
func (m *MprisService) SkipToPrevious() error { return domain.ErrNoPlayer }
func (m *MprisService) SkipToNext() error     { return domain.ErrNoPlayer }

// Subscribe returns a channel that never delivers events
func (m *MprisService) Subscribe(context.Context) (<-chan domain.MediaEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = make(chan domain.MediaEvent)
	}
	return m.events, nil
}

// Unsubscribe closes the channel returned by Subscribe
func (m *MprisService) Unsubscribe() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events != nil {
		close(m.events)
		m.events = nil
	}
	return nil
}

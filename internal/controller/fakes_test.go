package controller

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/genricoloni/standby/internal/domain"
)

const testPlaceholder = "Not Playing"

type testConfig struct{}

func (testConfig) TickInterval() time.Duration { return time.Second }
func (testConfig) ArtworkSize() int            { return 600 }
func (testConfig) Placeholder() string         { return testPlaceholder }
func (testConfig) KeepAwake() bool             { return false }
func (testConfig) Display() domain.DisplaySettings {
	return domain.DisplaySettings{Layout: domain.OrientationAuto}
}

// fakeClock returns a settable time
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeTicker is fired by hand from tests
type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return nil
}

func (t *fakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeScheduler struct {
	tickers  []*fakeTicker
	interval time.Duration
	err      error
}

func (s *fakeScheduler) NewTicker(interval time.Duration) (domain.Ticker, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.interval = interval
	t := &fakeTicker{ch: make(chan time.Time)}
	s.tickers = append(s.tickers, t)
	return t, nil
}

func (s *fakeScheduler) last() *fakeTicker {
	return s.tickers[len(s.tickers)-1]
}

// fakeService is an in-memory media player
type fakeService struct {
	mu          sync.Mutex
	state       domain.PlaybackState
	item        *domain.MediaItem
	position    time.Duration
	artwork     image.Image
	artworkErr  error
	artworkSize int

	// blockArtwork makes Artwork wait for cancellation, signalling artworkStarted
	blockArtwork   bool
	artworkStarted chan struct{}

	events        chan domain.MediaEvent
	subscriptions int
	subscribeErr  error
	commands      []string
}

func newFakeService() *fakeService {
	return &fakeService{state: domain.StateStopped}
}

func (s *fakeService) PlaybackState() (domain.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *fakeService) NowPlayingItem() (*domain.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil {
		return nil, nil
	}
	item := *s.item
	return &item, nil
}

func (s *fakeService) ElapsedPosition() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, nil
}

func (s *fakeService) Artwork(ctx context.Context, _ *domain.MediaItem, size int) (image.Image, error) {
	s.mu.Lock()
	s.artworkSize = size
	img, err, block, started := s.artwork, s.artworkErr, s.blockArtwork, s.artworkStarted
	s.mu.Unlock()

	if block {
		if started != nil {
			select {
			case started <- struct{}{}:
			default:
			}
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return img, err
}

func (s *fakeService) ArtworkSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artworkSize
}

func (s *fakeService) record(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	return nil
}

func (s *fakeService) Play() error           { return s.record("play") }
func (s *fakeService) Pause() error          { return s.record("pause") }
func (s *fakeService) SkipToPrevious() error { return s.record("previous") }
func (s *fakeService) SkipToNext() error     { return s.record("next") }

func (s *fakeService) Subscribe(context.Context) (<-chan domain.MediaEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	s.subscriptions++
	s.events = make(chan domain.MediaEvent, 4)
	return s.events, nil
}

func (s *fakeService) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriptions > 0 {
		s.subscriptions--
	}
	return nil
}

func (s *fakeService) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions
}

func (s *fakeService) SetItem(item *domain.MediaItem, position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item = item
	s.position = position
}

func (s *fakeService) SetPosition(position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
}

func (s *fakeService) SetState(state domain.PlaybackState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *fakeService) Emit(kind domain.EventKind) {
	s.mu.Lock()
	ch := s.events
	s.mu.Unlock()
	ch <- domain.MediaEvent{Kind: kind, Player: "org.mpris.MediaPlayer2.test"}
}

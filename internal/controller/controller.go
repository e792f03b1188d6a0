package controller

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genricoloni/standby/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Controller mirrors the system media player into a PlaybackSnapshot and
// forwards transport intents back to it.
//
// Ticks and media events are dispatched from a single loop goroutine and every
// handler runs under mu, so snapshot replacement is serialized. Artwork is
// fetched without mu held and only applied if the track has not changed since.
// Handlers are no-ops while the controller is inactive.
type Controller struct {
	logger    *zap.Logger
	cfg       domain.Config
	service   domain.MediaService
	scheduler domain.Scheduler
	clock     domain.Clock

	mu        sync.Mutex
	active    bool
	ticker    domain.Ticker
	cancel    context.CancelFunc
	observers []func(domain.PlaybackSnapshot)
	wg        sync.WaitGroup

	// trackGen counts track refreshes; artCancel aborts the pending artwork load
	trackGen  uint64
	artCancel context.CancelFunc

	snapshot atomic.Pointer[domain.PlaybackSnapshot]
}

// NewController creates an inactive controller
func NewController(
	logger *zap.Logger,
	cfg domain.Config,
	service domain.MediaService,
	scheduler domain.Scheduler,
	clock domain.Clock,
) *Controller {
	c := &Controller{
		logger:    logger,
		cfg:       cfg,
		service:   service,
		scheduler: scheduler,
		clock:     clock,
	}
	idle := domain.IdleSnapshot(cfg.Placeholder(), clock.Now())
	c.snapshot.Store(&idle)
	return c
}

// Observe registers fn to receive every new snapshot. fn runs on the
// controller's execution context and must not call Activate or Deactivate.
func (c *Controller) Observe(fn func(domain.PlaybackSnapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns a copy of the current snapshot
func (c *Controller) Snapshot() domain.PlaybackSnapshot {
	return *c.snapshot.Load()
}

// Active reports whether the controller is running
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activate subscribes to media events, starts the periodic tick and performs
// an immediate full refresh. Calling it while active does nothing.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	events, err := c.service.Subscribe(loopCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to media events: %w", err)
	}

	ticker, err := c.scheduler.NewTicker(c.cfg.TickInterval())
	if err != nil {
		cancel()
		return multierr.Append(
			fmt.Errorf("start tick: %w", err),
			c.service.Unsubscribe(),
		)
	}

	c.ticker = ticker
	c.cancel = cancel
	c.active = true

	idle := domain.IdleSnapshot(c.cfg.Placeholder(), c.clock.Now())
	c.snapshot.Store(&idle)

	c.refreshTrack(loopCtx)
	c.refreshPlaybackState()
	c.refreshTick()

	c.wg.Add(1)
	go c.runLoop(loopCtx, ticker.C(), events)

	c.logger.Info("Now playing controller activated",
		zap.Duration("tick", c.cfg.TickInterval()))
	return nil
}

// Deactivate stops the tick and unsubscribes from media events. Once it
// returns, the snapshot is no longer mutated and observers are no longer
// called. Calling it while inactive does nothing.
func (c *Controller) Deactivate() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = false
	c.cancel()
	if c.artCancel != nil {
		c.artCancel()
		c.artCancel = nil
	}

	err := multierr.Combine(
		c.ticker.Stop(),
		c.service.Unsubscribe(),
	)
	c.ticker = nil
	c.cancel = nil
	c.mu.Unlock()

	// The loop or an artwork load may be waiting on mu; they see !active and exit
	c.wg.Wait()

	if err != nil {
		c.logger.Warn("Controller released resources with errors", zap.Error(err))
	}
	c.logger.Info("Now playing controller deactivated")
	return err
}

// runLoop serializes ticks and media events onto the controller
func (c *Controller) runLoop(ctx context.Context, ticks <-chan time.Time, events <-chan domain.MediaEvent) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticks:
			c.OnTick()

		case ev, ok := <-events:
			if !ok {
				c.logger.Info("Media events channel closed")
				events = nil
				continue
			}
			c.logger.Debug("Media event received",
				zap.Stringer("kind", ev.Kind),
				zap.String("player", ev.Player))

			switch ev.Kind {
			case domain.TrackChanged:
				c.OnTrackChanged(ctx)
			case domain.PlaybackStateChanged:
				c.OnPlaybackStateChanged()
			}
		}
	}
}

// OnTick refreshes the wall clock and the elapsed position
func (c *Controller) OnTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.refreshTick()
}

// OnTrackChanged re-reads the current item's metadata and starts loading its
// artwork in the background
func (c *Controller) OnTrackChanged(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.refreshTrack(ctx)
}

// OnPlaybackStateChanged re-reads whether the player is playing
func (c *Controller) OnPlaybackStateChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.refreshPlaybackState()
}

// TogglePlayPause pauses a playing player and plays anything else.
// isPlaying is only updated by the resulting state notification.
func (c *Controller) TogglePlayPause() error {
	if !c.Active() {
		return nil
	}

	state, err := c.service.PlaybackState()
	if err != nil {
		c.logger.Debug("Failed to read playback state", zap.Error(err))
	}

	if state.IsPlaying() {
		return c.command("pause", c.service.Pause)
	}
	return c.command("play", c.service.Play)
}

// SkipPrevious forwards to the player's previous-track command
func (c *Controller) SkipPrevious() error {
	if !c.Active() {
		return nil
	}
	return c.command("previous", c.service.SkipToPrevious)
}

// SkipNext forwards to the player's next-track command
func (c *Controller) SkipNext() error {
	if !c.Active() {
		return nil
	}
	return c.command("next", c.service.SkipToNext)
}

func (c *Controller) command(name string, fn func() error) error {
	if err := fn(); err != nil {
		c.logger.Warn("Media command failed",
			zap.String("command", name),
			zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	c.logger.Debug("Media command sent", zap.String("command", name))
	return nil
}

// refreshTick must be called with mu held
func (c *Controller) refreshTick() {
	next := c.Snapshot()
	next.WallClock = domain.TruncateToMinute(c.clock.Now())
	next.Elapsed = c.readElapsed(next)
	c.publish(next)
}

// refreshTrack publishes the new item's metadata with no artwork and hands the
// artwork fetch to loadArtwork. Must be called with mu held.
func (c *Controller) refreshTrack(ctx context.Context) {
	next := c.Snapshot()
	placeholder := c.cfg.Placeholder()

	c.trackGen++
	if c.artCancel != nil {
		c.artCancel()
		c.artCancel = nil
	}

	item, err := c.service.NowPlayingItem()
	if err != nil {
		c.logger.Debug("Failed to read current item", zap.Error(err))
	}

	if item == nil {
		next.HasTrack = false
		next.Title = placeholder
		next.Artist = placeholder
		next.Album = ""
		next.Artwork = nil
		next.Duration = 0
		next.Elapsed = 0
		c.publish(next)
		return
	}

	next.HasTrack = true
	next.Title = orPlaceholder(item.Title, placeholder)
	next.Artist = orPlaceholder(item.Artist, placeholder)
	next.Album = item.Album
	next.Duration = max(item.Duration, 0)
	next.Artwork = nil
	next.Elapsed = c.readElapsed(next)

	c.logger.Info("Track changed",
		zap.String("title", next.Title),
		zap.String("artist", next.Artist),
		zap.Duration("duration", next.Duration))

	c.publish(next)

	artCtx, cancel := context.WithCancel(ctx)
	c.artCancel = cancel
	c.wg.Add(1)
	go c.loadArtwork(artCtx, cancel, c.trackGen, item)
}

// loadArtwork fetches artwork for item and applies it if item is still the
// current track
func (c *Controller) loadArtwork(ctx context.Context, cancel context.CancelFunc, gen uint64, item *domain.MediaItem) {
	defer c.wg.Done()
	defer cancel()

	img := c.readArtwork(ctx, item)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || gen != c.trackGen || img == nil {
		return
	}

	next := c.Snapshot()
	next.Artwork = img
	c.publish(next)
	c.logger.Debug("Artwork loaded", zap.String("title", item.Title))
}

// refreshPlaybackState must be called with mu held
func (c *Controller) refreshPlaybackState() {
	next := c.Snapshot()

	state, err := c.service.PlaybackState()
	if err != nil {
		c.logger.Debug("Failed to read playback state", zap.Error(err))
	}
	next.IsPlaying = state.IsPlaying()
	c.publish(next)
}

func (c *Controller) readElapsed(s domain.PlaybackSnapshot) time.Duration {
	if !s.HasTrack {
		return 0
	}
	pos, err := c.service.ElapsedPosition()
	if err != nil {
		c.logger.Debug("Failed to read elapsed position", zap.Error(err))
		return domain.ClampElapsed(s.Elapsed, s.Duration)
	}
	return domain.ClampElapsed(pos, s.Duration)
}

func (c *Controller) readArtwork(ctx context.Context, item *domain.MediaItem) image.Image {
	img, err := c.service.Artwork(ctx, item, c.cfg.ArtworkSize())
	if err != nil {
		c.logger.Debug("Artwork unavailable",
			zap.String("title", item.Title),
			zap.Error(err))
		return nil
	}
	return img
}

// publish replaces the snapshot and notifies observers; mu must be held
func (c *Controller) publish(next domain.PlaybackSnapshot) {
	c.snapshot.Store(&next)
	for _, fn := range c.observers {
		fn(next)
	}
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

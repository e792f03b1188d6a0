package ui

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/genricoloni/standby/internal/domain"
)

type fakeControls struct {
	mu       sync.Mutex
	calls    []string
	err      error
	snapshot domain.PlaybackSnapshot
}

func (f *fakeControls) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeControls) TogglePlayPause() error { return f.record("toggle") }
func (f *fakeControls) SkipPrevious() error    { return f.record("previous") }
func (f *fakeControls) SkipNext() error        { return f.record("next") }

func (f *fakeControls) Snapshot() domain.PlaybackSnapshot { return f.snapshot }

func (f *fakeControls) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeSettings struct {
	display domain.DisplaySettings
	changes chan struct{}
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		display: domain.DisplaySettings{
			Color:          "2",
			ColorMode:      "manual",
			Layout:         domain.OrientationPortrait,
			ArtworkEnabled: true,
			ArtworkColumns: 10,
		},
		changes: make(chan struct{}, 1),
	}
}

func (f *fakeSettings) Display() domain.DisplaySettings { return f.display }
func (f *fakeSettings) Changes() <-chan struct{}        { return f.changes }

type fakePicker struct {
	color string
}

func (f fakePicker) AccentColor(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("nil image")
	}
	return f.color, nil
}

// newTestModel builds a model that never touches the real terminal
func newTestModel(t *testing.T, controls *fakeControls, settings *fakeSettings) Model {
	t.Helper()
	bridge := newSnapshotBridge()
	t.Cleanup(bridge.close)

	m := newModel(controls, fakePicker{color: "#ff8800"}, settings, nil, bridge)
	m.supportsKitty = false
	m.width = 80
	m.height = 40
	return m
}

// generateTestImage creates a solid test image with the given dimensions
func generateTestImage(width, height int, fillColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

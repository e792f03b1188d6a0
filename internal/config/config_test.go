package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/genricoloni/standby/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loadFile(t *testing.T, path string) *AppConfig {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := load(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", "/var/state")

	cfg, err := NewAppConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, 600, cfg.ArtworkSize())
	assert.Equal(t, "Not Playing", cfg.Placeholder())
	assert.False(t, cfg.KeepAwake())
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel())
	assert.Equal(t, "/var/state/standby/standby.log", cfg.LogFile())
	assert.Equal(t, domain.DisplaySettings{
		Color:          "2",
		ColorMode:      "manual",
		Layout:         domain.OrientationAuto,
		ArtworkEnabled: true,
		ArtworkColumns: 24,
	}, cfg.Display())
	assert.Empty(t, cfg.warnings)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
ui:
  color: "#ff8800"
  color_mode: auto
  layout: landscape
  placeholder: Nothing on
artwork:
  enabled: false
  size_pixels: 300
timing:
  tick_ms: 500
display:
  keep_awake: true
log:
  level: debug
  file: /tmp/standby-test.log
`)

	cfg := loadFile(t, path)

	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 300, cfg.ArtworkSize())
	assert.Equal(t, "Nothing on", cfg.Placeholder())
	assert.True(t, cfg.KeepAwake())
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "/tmp/standby-test.log", cfg.LogFile())

	display := cfg.Display()
	assert.Equal(t, "#ff8800", display.Color)
	assert.Equal(t, "auto", display.ColorMode)
	assert.Equal(t, domain.OrientationLandscape, display.Layout)
	assert.False(t, display.ArtworkEnabled)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "ui:\n  layout: landscape\n")
	t.Setenv("STANDBY_UI_LAYOUT", "portrait")
	t.Setenv("STANDBY_DISPLAY_KEEP_AWAKE", "true")

	cfg := loadFile(t, path)

	assert.Equal(t, domain.OrientationPortrait, cfg.Display().Layout)
	assert.True(t, cfg.KeepAwake())
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	path := writeConfig(t, `
ui:
  color: notacolor
  layout: diagonal
  placeholder: "  "
timing:
  tick_ms: 5
`)

	cfg := loadFile(t, path)

	assert.Len(t, cfg.warnings, 4)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, "Not Playing", cfg.Placeholder())
	assert.Equal(t, "2", cfg.Display().Color)
	assert.Equal(t, domain.OrientationAuto, cfg.Display().Layout)

	// Warnings are logged once, then dropped
	cfg.Watch(zap.NewNop())
	assert.Empty(t, cfg.warnings)
}

func TestBrokenFileFails(t *testing.T) {
	path := writeConfig(t, "ui: [unterminated\n")

	v := viper.New()
	v.SetConfigFile(path)
	_, err := load(v)
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "ui:\n  color: \"1\"\n")
	cfg := loadFile(t, path)
	assert.Equal(t, "1", cfg.Display().Color)

	require.NoError(t, os.WriteFile(path, []byte("ui:\n  color: \"5\"\n  layout: portrait\n"), 0o600))
	require.NoError(t, cfg.v.ReadInConfig())
	cfg.reload(zap.NewNop(), fsnotify.Event{Name: path, Op: fsnotify.Write})

	select {
	case <-cfg.Changes():
	default:
		t.Fatal("expected a change notification")
	}
	assert.Equal(t, "5", cfg.Display().Color)
	assert.Equal(t, domain.OrientationPortrait, cfg.Display().Layout)

	// Notifications coalesce while one is pending
	cfg.reload(zap.NewNop(), fsnotify.Event{Name: path, Op: fsnotify.Write})
	cfg.reload(zap.NewNop(), fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.Len(t, cfg.Changes(), 1)
}

func TestLogFileExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, "log:\n  file: ~/logs/standby.log\n")

	cfg := loadFile(t, path)
	assert.Equal(t, filepath.Join(home, "logs", "standby.log"), cfg.LogFile())
}

// TestSafeConfigConcurrency tests that SafeConfig can be safely accessed from multiple goroutines
func TestSafeConfigConcurrency(t *testing.T) {
	sc := &SafeConfig{}
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := Settings{}
				cfg.UI.Color = string(rune('0' + (id % 10)))
				cfg.Artwork.Enabled = (j % 2) == 0
				sc.Set(cfg)
			}
		}(i)
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := sc.Get()
				_ = cfg.UI.Color
				_ = cfg.Artwork.Enabled
			}
		}()
	}

	wg.Wait()
}

func TestSafeConfigGetReturnsCopy(t *testing.T) {
	sc := &SafeConfig{}
	cfg := Settings{}
	cfg.UI.Color = "1"
	sc.Set(cfg)

	retrieved := sc.Get()
	retrieved.UI.Color = "2"

	assert.Equal(t, "1", sc.Get().UI.Color)
}

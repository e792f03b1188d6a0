package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/genricoloni/standby/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultColor          = "2"
	defaultColorMode      = "manual"
	defaultPlaceholder    = "Not Playing"
	defaultArtworkSize    = 600
	defaultArtworkColumns = 24
	defaultTickMs         = 1000
	defaultLogLevel       = "info"

	minArtworkSize    = 64
	maxArtworkSize    = 2048
	minArtworkColumns = 4
	maxArtworkColumns = 80
	minTickMs         = 100
	maxTickMs         = 60000
)

// configError describes one invalid field
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// isValidColor accepts ANSI codes (0-255) and hex colors (#rgb or #rrggbb)
func isValidColor(color string) bool {
	if color == "" {
		return false
	}

	if strings.HasPrefix(color, "#") {
		hex := color[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}

	for _, r := range color {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(color)
	return err == nil && n <= 255
}

// validateConfig returns one error per invalid field
func validateConfig(cfg *Settings) []error {
	var errs []error

	if !isValidColor(cfg.UI.Color) {
		errs = append(errs, configError{"ui.color", fmt.Sprintf("invalid color format '%s'", cfg.UI.Color)})
	}

	switch cfg.UI.ColorMode {
	case "manual", "auto":
	default:
		errs = append(errs, configError{"ui.color_mode", fmt.Sprintf("must be 'manual' or 'auto' (got '%s')", cfg.UI.ColorMode)})
	}

	switch domain.Orientation(cfg.UI.Layout) {
	case domain.OrientationAuto, domain.OrientationPortrait, domain.OrientationLandscape:
	default:
		errs = append(errs, configError{"ui.layout", fmt.Sprintf("must be 'auto', 'portrait' or 'landscape' (got '%s')", cfg.UI.Layout)})
	}

	if strings.TrimSpace(cfg.UI.Placeholder) == "" {
		errs = append(errs, configError{"ui.placeholder", "must not be empty"})
	}

	if cfg.Artwork.SizePixels < minArtworkSize || cfg.Artwork.SizePixels > maxArtworkSize {
		errs = append(errs, configError{"artwork.size_pixels",
			fmt.Sprintf("must be between %d and %d (got %d)", minArtworkSize, maxArtworkSize, cfg.Artwork.SizePixels)})
	}

	if cfg.Artwork.WidthColumns < minArtworkColumns || cfg.Artwork.WidthColumns > maxArtworkColumns {
		errs = append(errs, configError{"artwork.width_columns",
			fmt.Sprintf("must be between %d and %d (got %d)", minArtworkColumns, maxArtworkColumns, cfg.Artwork.WidthColumns)})
	}

	if cfg.Timing.TickMs < minTickMs || cfg.Timing.TickMs > maxTickMs {
		errs = append(errs, configError{"timing.tick_ms",
			fmt.Sprintf("must be between %d and %d (got %d)", minTickMs, maxTickMs, cfg.Timing.TickMs)})
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, configError{"log.level", fmt.Sprintf("unknown level '%s'", cfg.Log.Level)})
	}

	return errs
}

// applyDefaultsForInvalidFields resets every field named in errs to its default
func applyDefaultsForInvalidFields(cfg *Settings, errs []error) {
	for _, err := range errs {
		ce, ok := err.(configError)
		if !ok {
			continue
		}
		switch ce.field {
		case "ui.color":
			cfg.UI.Color = defaultColor
		case "ui.color_mode":
			cfg.UI.ColorMode = defaultColorMode
		case "ui.layout":
			cfg.UI.Layout = string(domain.OrientationAuto)
		case "ui.placeholder":
			cfg.UI.Placeholder = defaultPlaceholder
		case "artwork.size_pixels":
			cfg.Artwork.SizePixels = defaultArtworkSize
		case "artwork.width_columns":
			cfg.Artwork.WidthColumns = defaultArtworkColumns
		case "timing.tick_ms":
			cfg.Timing.TickMs = defaultTickMs
		case "log.level":
			cfg.Log.Level = defaultLogLevel
		}
	}
}

func logConfigWarnings(logger *zap.Logger, errs []error) {
	for _, err := range errs {
		logger.Warn("Invalid config value, using default", zap.Error(err))
	}
}

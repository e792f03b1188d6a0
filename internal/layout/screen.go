package layout

import (
	"github.com/genricoloni/standby/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

var (
	numActiveDisplays = screenshot.NumActiveDisplays
	getDisplayBounds  = screenshot.GetDisplayBounds
)

// NewScreenResolution detects the primary screen resolution at startup
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	n := numActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, assuming a 1920x1080 landscape screen")
		return &domain.ScreenResolution{Width: 1920, Height: 1080}
	}

	// Use primary monitor (index 0)
	bounds := getDisplayBounds(0)
	res := &domain.ScreenResolution{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	logger.Info("Screen resolution detected",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.String("orientation", string(res.Orientation())))

	return res
}

// Resolve picks the concrete orientation to draw. A configured portrait or
// landscape always wins; auto follows the terminal once its size is known
// and the screen before that.
func Resolve(configured domain.Orientation, screen *domain.ScreenResolution, cols, rows int) domain.Orientation {
	switch configured {
	case domain.OrientationPortrait, domain.OrientationLandscape:
		return configured
	}

	if cols > 0 && rows > 0 {
		// Terminal cells are roughly twice as tall as they are wide
		if cols >= rows*2 {
			return domain.OrientationLandscape
		}
		return domain.OrientationPortrait
	}

	if screen != nil {
		return screen.Orientation()
	}
	return domain.OrientationPortrait
}

package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support
	"sort"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // WebP format support
)

const sampleRate = 5 // Sample every 5th pixel for accent extraction

// ArtworkProcessor decodes album art and prepares it for the standby screen
type ArtworkProcessor struct {
	logger *zap.Logger
}

// NewArtworkProcessor creates a new artwork processor
func NewArtworkProcessor(logger *zap.Logger) *ArtworkProcessor {
	return &ArtworkProcessor{logger: logger}
}

// Square decodes image data and center-crops it to a size×size square
func (p *ArtworkProcessor) Square(ctx context.Context, data []byte, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid artwork size: %d", size)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Validate image dimensions to prevent division by zero
	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	// Decoding is the slow part; don't crop for a track that is already gone
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	square := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	p.logger.Debug("Artwork processed",
		zap.String("format", format),
		zap.Int("srcW", bounds.Dx()),
		zap.Int("srcH", bounds.Dy()),
		zap.Int("size", size))
	return square, nil
}

type colorScore struct {
	rgb   uint32
	count int
	score float64
}

// AccentColor picks a light, saturated color from the image that reads well on
// a dark background, as a "#rrggbb" hex string.
func (p *ArtworkProcessor) AccentColor(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	bounds := img.Bounds()
	colorMap := make(map[uint32]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleRate {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleRate {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 32768 {
				continue // Skip transparent pixels
			}
			rgb := (r>>8)<<16 | (g>>8)<<8 | b>>8
			colorMap[rgb]++
		}
	}

	var candidates []colorScore
	for rgb, count := range colorMap {
		lightness, saturation := hsl(rgb)

		// Skip colors that are too dark, near-white, or washed out
		if lightness < 0.3 || lightness > 0.85 || saturation < 0.25 {
			continue
		}

		// Ideal lightness is around 0.5-0.7
		lightnessScore := lightness
		if lightness > 0.7 {
			lightnessScore = 0.7 - (lightness - 0.7)
		}

		score := saturation*2.5 + lightnessScore*1.5 + float64(count)/1000.0
		candidates = append(candidates, colorScore{rgb: rgb, count: count, score: score})
	}

	if len(candidates) == 0 {
		// Fall back to k-means when sampling finds nothing vivid enough
		colors, err := prominentcolor.Kmeans(img)
		if err != nil || len(colors) == 0 {
			return "", fmt.Errorf("no suitable colors found")
		}
		c := colors[0]
		hex := fmt.Sprintf("#%02x%02x%02x", c.Color.R, c.Color.G, c.Color.B)
		p.logger.Debug("Accent color from k-means fallback", zap.String("hex", hex))
		return hex, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rgb < candidates[j].rgb
	})

	best := candidates[0].rgb
	return fmt.Sprintf("#%02x%02x%02x", uint8(best>>16), uint8(best>>8), uint8(best)), nil
}

// hsl returns the lightness and saturation of a packed 0xRRGGBB color
func hsl(rgb uint32) (lightness, saturation float64) {
	rf := float64(uint8(rgb>>16)) / 255.0
	gf := float64(uint8(rgb>>8)) / 255.0
	bf := float64(uint8(rgb)) / 255.0

	hi := max(rf, gf, bf)
	lo := min(rf, gf, bf)
	lightness = (hi + lo) / 2.0

	if hi != lo {
		if lightness > 0.5 {
			saturation = (hi - lo) / (2.0 - hi - lo)
		} else {
			saturation = (hi - lo) / (hi + lo)
		}
	}
	return lightness, saturation
}

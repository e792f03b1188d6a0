package processor

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestArtworkProcessor_Square(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	tests := []struct {
		name          string
		imageData     func(t *testing.T) []byte
		size          int
		expectedError string
	}{
		{
			name:      "Success - Square JPEG",
			imageData: func(t *testing.T) []byte { return createTestJPEG(t, 100, 100, red) },
			size:      600,
		},
		{
			name:      "Success - Landscape PNG is cropped",
			imageData: func(t *testing.T) []byte { return createTestPNG(t, 640, 360, red) },
			size:      300,
		},
		{
			name:      "Success - Portrait PNG is cropped",
			imageData: func(t *testing.T) []byte { return createTestPNG(t, 360, 640, red) },
			size:      300,
		},
		{
			name:      "Edge Case - Very Small Image",
			imageData: func(t *testing.T) []byte { return createTestJPEG(t, 1, 1, red) },
			size:      600,
		},
		{
			name:          "Error - Invalid Image Data",
			imageData:     func(*testing.T) []byte { return []byte("not-an-image") },
			size:          600,
			expectedError: "failed to decode image",
		},
		{
			name:          "Error - Empty Data",
			imageData:     func(*testing.T) []byte { return []byte{} },
			size:          600,
			expectedError: "failed to decode image",
		},
		{
			name:          "Error - Corrupted JPEG",
			imageData:     func(*testing.T) []byte { return []byte{0xFF, 0xD8, 0xFF, 0x00, 0x00} },
			size:          600,
			expectedError: "failed to decode image",
		},
		{
			name:          "Error - Zero Size",
			imageData:     func(t *testing.T) []byte { return createTestJPEG(t, 10, 10, red) },
			size:          0,
			expectedError: "invalid artwork size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := NewArtworkProcessor(zap.NewNop())
			img, err := processor.Square(context.Background(), tt.imageData(t), tt.size)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			bounds := img.Bounds()
			if bounds.Dx() != tt.size || bounds.Dy() != tt.size {
				t.Errorf("expected %dx%d, got %dx%d", tt.size, tt.size, bounds.Dx(), bounds.Dy())
			}
		})
	}
}

func TestArtworkProcessor_Square_ContextCancelled(t *testing.T) {
	processor := NewArtworkProcessor(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processor.Square(ctx, createTestJPEG(t, 50, 50, color.RGBA{B: 255, A: 255}), 100)
	if err == nil {
		t.Fatal("expected cancelled context to abort processing")
	}
}

func TestArtworkProcessor_AccentColor(t *testing.T) {
	processor := NewArtworkProcessor(zap.NewNop())

	t.Run("solid vivid color", func(t *testing.T) {
		hex, err := processor.AccentColor(generateTestImage(100, 100, color.RGBA{255, 0, 0, 255}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hex != "#ff0000" {
			t.Errorf("expected #ff0000, got %s", hex)
		}
	})

	t.Run("small image", func(t *testing.T) {
		hex, err := processor.AccentColor(generateTestImage(5, 5, color.RGBA{128, 128, 255, 255}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hex != "#8080ff" {
			t.Errorf("expected #8080ff, got %s", hex)
		}
	})

	t.Run("gradient image", func(t *testing.T) {
		img := generateGradientImage(100, 100, color.RGBA{0, 0, 255, 255}, color.RGBA{0, 255, 0, 255})
		hex, err := processor.AccentColor(img)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !isValidHexColor(hex) {
			t.Errorf("Invalid hex color format: %s", hex)
		}
	})

	t.Run("grey image falls back to k-means", func(t *testing.T) {
		hex, err := processor.AccentColor(generateTestImage(50, 50, color.RGBA{90, 90, 90, 255}))
		// Either a k-means color or a clean error, never a malformed string
		if err == nil && !isValidHexColor(hex) {
			t.Errorf("Invalid hex color format: %s", hex)
		}
	})

	t.Run("nil image", func(t *testing.T) {
		if _, err := processor.AccentColor(nil); err == nil {
			t.Error("Expected error for nil image")
		}
	})
}

func TestHSL(t *testing.T) {
	tests := []struct {
		name       string
		rgb        uint32
		lightness  float64
		saturation float64
	}{
		{"black", 0x000000, 0, 0},
		{"white", 0xffffff, 1, 0},
		{"pure red", 0xff0000, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, s := hsl(tt.rgb)
			if l != tt.lightness || s != tt.saturation {
				t.Errorf("hsl(%06x) = (%v, %v), want (%v, %v)", tt.rgb, l, s, tt.lightness, tt.saturation)
			}
		})
	}
}

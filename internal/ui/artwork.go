package ui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

const (
	kittyImageID   = 42
	kittyChunkSize = 4096 // Kitty protocol limit per escape sequence
	cellPixels     = 24   // Rough pixel width of one terminal cell, used to cap upload size

	// Deletes every placement so a stale cover never lingers after a track change
	kittyDeleteAll = "\033_Ga=d,d=A\033\\"
)

// supportsKittyGraphics checks if the terminal supports the Kitty graphics protocol
func supportsKittyGraphics() bool {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	if strings.Contains(term, "kitty") || strings.Contains(term, "konsole") {
		return true
	}

	// TERM_PROGRAM covers Ghostty and WezTerm, which keep TERM=xterm-256color
	return termProgram == "ghostty" || termProgram == "WezTerm"
}

// encodeArtworkForKitty scales the artwork for the terminal and encodes it as
// Kitty graphics escape sequences placed over the given number of columns
func encodeArtworkForKitty(img image.Image, columns int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	if columns <= 0 {
		return "", fmt.Errorf("invalid artwork width: %d columns", columns)
	}

	// Kitty scales to the cell box itself; only avoid uploading more than it can show
	scaled := img
	if maxWidth := columns * cellPixels; img.Bounds().Dx() > maxWidth {
		scaled = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var result strings.Builder
	result.WriteString(fmt.Sprintf("\033_Ga=d,d=I,i=%d\033\\", kittyImageID))

	if len(encoded) <= kittyChunkSize {
		// c sizes by columns so zoom doesn't matter; C=1 keeps the cursor in place
		result.WriteString(fmt.Sprintf("\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1;%s\033\\", kittyImageID, columns, encoded))
		return result.String(), nil
	}

	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		chunk := encoded[i:end]

		switch {
		case i == 0:
			result.WriteString(fmt.Sprintf("\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1,m=1;%s\033\\", kittyImageID, columns, chunk))
		case end == len(encoded):
			result.WriteString(fmt.Sprintf("\033_Gm=0;%s\033\\", chunk))
		default:
			result.WriteString(fmt.Sprintf("\033_Gm=1;%s\033\\", chunk))
		}
	}

	return result.String(), nil
}

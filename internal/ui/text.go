package ui

import (
	"fmt"
	"time"
)

// formatTime renders a duration as MM:SS, minutes may exceed 59
func formatTime(d time.Duration) string {
	seconds := int64(max(d, 0) / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// truncate shortens text to limit runes, ending with an ellipsis when cut
func truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 {
		return ""
	}
	if len(runes) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

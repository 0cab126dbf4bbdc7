package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderFillRate renders a fill-rate bar like [████░░░░]  45%.
// Green from two thirds, yellow from one third, red below.
func RenderFillRate(rate float64, width int) string {
	rate = min(max(rate, 0), 1)
	width = max(width, 2)

	filled := min(int(rate*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case rate < 0.33:
		style = StyleRed
	case rate < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), rate*100)
}

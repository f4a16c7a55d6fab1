package presentation

import (
	"fmt"
	"io"
	"strings"
)

const confidenceBarWidth = 20

// WriteText prints a result view for a terminal. A nil view prints nothing.
func WriteText(w io.Writer, view *ResultView) error {
	if view == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Verdict: %s [%s]\n\n", strings.ToUpper(view.Verdict), view.VerdictClass)
	fmt.Fprintf(&b, "AI Reasoning:\n%s\n\n", view.Reasoning)
	fmt.Fprintf(&b, "Source Strategy: %s (%d items)\n", view.SourceStrategy, len(view.Evidence))

	if view.Expanded {
		for i, item := range view.Evidence {
			fmt.Fprintf(&b, "\n%d. %s %s (%s)\n", i+1, item.Icon, item.Category, item.Source)
			fmt.Fprintf(&b, "   \"%s\"\n", item.Text)
			if item.HasLink() {
				fmt.Fprintf(&b, "   View Source: %s\n", item.URL)
			}
			fmt.Fprintf(&b, "   Confidence: %s %s\n", textBar(item.ConfidencePercent), item.ConfidenceWidth)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// textBar draws a fixed-width bar whose filled share equals percent
func textBar(percent float64) string {
	filled := int(percent / 100 * confidenceBarWidth)
	if filled > confidenceBarWidth {
		filled = confidenceBarWidth
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", confidenceBarWidth-filled) + "]"
}

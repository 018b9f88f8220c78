package outwriter

import (
	"os"

	"github.com/huangsam/seobench/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableDetailWidth calculates the maximum width for the detail column in table output
// based on terminal width.
func GetMaxTableDetailWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Issue Type + Severity + Count with borders/padding
	baseWidth := 45

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 90 {
		return 90
	}
	return available
}

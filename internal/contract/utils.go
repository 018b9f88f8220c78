package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/seobench/schema"
)

// Color variables for console output.
var (
	ErrorColor   = color.New(color.FgRed, color.Bold) // errors block the run
	WarningColor = color.New(color.FgYellow)          // warnings are recorded, never block
	InfoColor    = color.New(color.FgCyan)            // informational
	OKColor      = color.New(color.FgGreen, color.Bold)
)

// GetPlainSeverity returns the upper-case label used in tables for a severity.
func GetPlainSeverity(sev schema.Severity) string {
	return strings.ToUpper(string(sev))
}

// GetColorSeverity returns a colored severity label for console output (table).
func GetColorSeverity(sev schema.Severity) string {
	text := GetPlainSeverity(sev)

	switch sev {
	case schema.ErrorSeverity:
		return ErrorColor.Sprint(text)
	case schema.WarningSeverity:
		return WarningColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// GetStatusLabel returns the run status label, colored when requested.
func GetStatusLabel(blocked, useColors bool) string {
	text := "OK"
	if blocked {
		text = "BLOCKED"
	}
	if !useColors {
		return text
	}
	if blocked {
		return ErrorColor.Sprint(text)
	}
	return OKColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message through the structured logger.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}

// GetLedgerDBFilePath returns the path to the SQLite DB file for the run ledger.
func GetLedgerDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".seobench_ledger.db"
	}
	return filepath.Join(homeDir, ".seobench_ledger.db")
}

// TruncateText truncates text to a maximum width with an ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// Package text provides the whitespace tokenization rule shared by both
// vocabulary sides, plus line hygiene for corpus ingestion.
//
// Splitting is whitespace-only: any run of Unicode whitespace separates
// tokens. Subword handling, casing, and morphology are out of scope.
package text

import (
	"errors"
	"strings"
)

// ErrEmptyLine is returned when a corpus line is empty or whitespace-only.
var ErrEmptyLine = errors.New("line is empty")

// Tokens splits s on whitespace and returns the non-empty tokens in order.
// An empty or whitespace-only input yields no tokens, not an error.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// NormalizeLine prepares a raw corpus line for tokenization.
// It normalizes line endings to \n, trims surrounding whitespace,
// and rejects empty or whitespace-only input.
func NormalizeLine(s string) (string, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)

	if s == "" {
		return "", ErrEmptyLine
	}

	return s, nil
}

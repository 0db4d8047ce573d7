// Package corpus reads parallel sentence corpora from disk: either a
// single tab-separated file with one pair per line, or the classic
// aligned-file layout with one sentence per line in each of two files.
// Files are read whole; streaming loaders are out of scope.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/example/go-nmt-prep/internal/text"
	"github.com/example/go-nmt-prep/internal/vectorizer"
)

// ReadPairsFile reads a tab-separated parallel corpus: one pair per
// line, source before the tab, target after it. Blank lines are
// skipped; a non-blank line without a tab fails with its line number.
func ReadPairsFile(path string) ([]vectorizer.Pair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pairs file: %w", err)
	}

	var pairs []vectorizer.Pair

	for i, line := range splitLines(string(raw)) {
		normalized, err := text.NormalizeLine(line)
		if err != nil {
			if errors.Is(err, text.ErrEmptyLine) {
				continue
			}

			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}

		source, target, found := strings.Cut(normalized, "\t")
		if !found {
			return nil, fmt.Errorf("%s line %d: no tab separator between source and target", path, i+1)
		}

		pairs = append(pairs, vectorizer.Pair{
			Source: strings.TrimSpace(source),
			Target: strings.TrimSpace(target),
		})
	}

	return pairs, nil
}

// ReadAlignedFiles reads a parallel corpus from two line-aligned files,
// one sentence per line per file. The files must have the same number
// of non-blank lines.
func ReadAlignedFiles(sourcePath, targetPath string) ([]vectorizer.Pair, error) {
	sourceLines, err := readLines(sourcePath)
	if err != nil {
		return nil, err
	}

	targetLines, err := readLines(targetPath)
	if err != nil {
		return nil, err
	}

	if len(sourceLines) != len(targetLines) {
		return nil, fmt.Errorf("aligned files differ in length: %s has %d sentences, %s has %d",
			sourcePath, len(sourceLines), targetPath, len(targetLines))
	}

	pairs := make([]vectorizer.Pair, len(sourceLines))
	for i := range sourceLines {
		pairs[i] = vectorizer.Pair{
			Source: sourceLines[i],
			Target: targetLines[i],
		}
	}

	return pairs, nil
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var lines []string

	for i, line := range splitLines(string(raw)) {
		normalized, err := text.NormalizeLine(line)
		if err != nil {
			if errors.Is(err, text.ErrEmptyLine) {
				continue
			}

			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}

		lines = append(lines, normalized)
	}

	return lines, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return strings.Split(s, "\n")
}

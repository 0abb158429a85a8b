package fasta

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Wrap splits seq into consecutive lines of width characters; the last line
// may be shorter. An empty sequence yields no lines.
func Wrap(seq string, width int) ([]string, error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, width)
	}
	return chunk(seq, width), nil
}

// WrapString is Wrap with the lines joined by newlines and no trailing
// newline.
func WrapString(seq string, width int) (string, error) {
	lines, err := Wrap(seq, width)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// Unwrap removes line breaks inserted by Wrap.
func Unwrap(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func chunk(seq string, width int) []string {
	if seq == "" {
		return nil
	}
	if !isASCII(seq) {
		return chunkRunes(seq, width)
	}
	lines := make([]string, 0, (len(seq)+width-1)/width)
	for len(seq) > width {
		lines = append(lines, seq[:width])
		seq = seq[width:]
	}
	return append(lines, seq)
}

func chunkRunes(seq string, width int) []string {
	lines := make([]string, 0, (utf8.RuneCountInString(seq)+width-1)/width)
	start, n := 0, 0
	for i := range seq {
		if n == width {
			lines = append(lines, seq[start:i])
			start, n = i, 0
		}
		n++
	}
	return append(lines, seq[start:])
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

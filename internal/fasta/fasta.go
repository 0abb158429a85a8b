// Package fasta reads FASTA formatted data as a stream of records, keeping
// only the records whose header satisfies a caller supplied predicate.
package fasta

import (
	"errors"
	"io"
	"strings"
)

// HeaderPrefix marks the first byte of a header line.
const HeaderPrefix = ">"

// DefaultWrapWidth is the conventional FASTA line width.
const DefaultWrapWidth = 80

// ErrInvalidWidth is returned when a wrap width below 1 is requested.
var ErrInvalidWidth = errors.New("fasta: wrap width must be at least 1")

// Record represents a single FASTA record. Header keeps the leading '>'.
type Record struct {
	Header   string
	Sequence string
}

// Predicate decides whether the record introduced by header is kept.
type Predicate interface {
	Match(header string) bool
}

// PredicateFunc adapts an ordinary function to a Predicate.
type PredicateFunc func(header string) bool

func (f PredicateFunc) Match(header string) bool { return f(header) }

// All keeps every record.
var All Predicate = PredicateFunc(func(string) bool { return true })

// ParseFasta reads every record from r in input order. Sequences are returned
// unwrapped.
func ParseFasta(r io.Reader) ([]Record, error) {
	var records []Record
	for rec, err := range Records(r, All, WithRawSequence()) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Collect gathers the kept records into a header to sequence map. Records
// sharing a header collide and the last one read wins.
func Collect(r io.Reader, keep Predicate, opts ...Option) (map[string]string, error) {
	m := make(map[string]string)
	for rec, err := range Records(r, keep, opts...) {
		if err != nil {
			return m, err
		}
		m[rec.Header] = rec.Sequence
	}
	return m, nil
}

// ID returns the first whitespace separated token of the header without the
// leading '>'.
func (r Record) ID() string {
	h := strings.TrimPrefix(r.Header, HeaderPrefix)
	if i := strings.IndexAny(h, " \t"); i >= 0 {
		return h[:i]
	}
	return h
}

// Description returns the header text following the ID, if any.
func (r Record) Description() string {
	h := strings.TrimPrefix(r.Header, HeaderPrefix)
	if i := strings.IndexAny(h, " \t"); i >= 0 {
		return strings.TrimSpace(h[i+1:])
	}
	return ""
}

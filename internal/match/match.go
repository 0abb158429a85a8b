// Package match builds header predicates from user supplied search terms.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoTerms is returned when every search term is blank.
var ErrNoTerms = errors.New("no search term was provided")

// PatternCompileError reports a search term that is not a valid pattern.
type PatternCompileError struct {
	Term string
	Err  error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("invalid search term %q: %v", e.Term, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }

type options struct {
	ignoreCase bool
	literal    bool
}

// Option changes how terms are compiled.
type Option func(*options)

// IgnoreCase makes every term match without regard to case.
func IgnoreCase() Option {
	return func(o *options) { o.ignoreCase = true }
}

// Literal treats terms as plain strings rather than regular expressions.
func Literal() Option {
	return func(o *options) { o.literal = true }
}

// Matcher reports whether any of its patterns occurs in a header.
type Matcher struct {
	terms    []string
	patterns []*regexp.Regexp
}

// Compile builds a Matcher from raw terms. Terms that are blank after
// trimming are skipped; the rest are compiled as given.
func Compile(terms []string, opts ...Option) (*Matcher, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	m := &Matcher{}
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		expr := term
		if o.literal {
			expr = regexp.QuoteMeta(expr)
		}
		if o.ignoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternCompileError{Term: term, Err: err}
		}
		m.terms = append(m.terms, term)
		m.patterns = append(m.patterns, re)
	}
	if len(m.patterns) == 0 {
		return nil, ErrNoTerms
	}
	return m, nil
}

// Match reports whether any pattern matches anywhere in header.
func (m *Matcher) Match(header string) bool {
	for _, re := range m.patterns {
		if re.MatchString(header) {
			return true
		}
	}
	return false
}

// Terms returns the terms that were compiled, in order.
func (m *Matcher) Terms() []string {
	return append([]string(nil), m.terms...)
}

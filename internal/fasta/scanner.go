package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"
)

// defaultBufferSize is the read buffer; longer lines arrive in fragments.
const defaultBufferSize = 64 * 1024

// Option configures a Scanner.
type Option func(*Scanner)

// WithWrapWidth sets the width kept sequences are wrapped to.
func WithWrapWidth(width int) Option {
	return func(s *Scanner) { s.width = width }
}

// WithRawSequence leaves kept sequences unwrapped so the output stage can
// wrap them instead.
func WithRawSequence() Option {
	return func(s *Scanner) { s.raw = true }
}

// WithBufferSize sets the size of the read buffer. It does not limit line
// length.
func WithBufferSize(n int) Option {
	return func(s *Scanner) { s.bufSize = n }
}

// Scanner reads FASTA records from an input stream one line at a time. A
// header is tested against the predicate when it is read; sequence lines of
// rejected records are dropped without being buffered, so memory use is
// bounded by the largest kept record. Lines of any length are accepted.
type Scanner struct {
	r       *bufio.Reader
	keep    Predicate
	width   int
	raw     bool
	bufSize int

	header  string
	seq     []byte
	keeping bool

	rec  Record
	err  error
	done bool
}

// NewScanner returns a Scanner reading from r. A nil predicate keeps every
// record.
func NewScanner(r io.Reader, keep Predicate, opts ...Option) *Scanner {
	if keep == nil {
		keep = All
	}
	s := &Scanner{keep: keep, width: DefaultWrapWidth, bufSize: defaultBufferSize}
	for _, opt := range opts {
		opt(s)
	}
	if !s.raw && s.width < 1 {
		s.err = fmt.Errorf("%w: got %d", ErrInvalidWidth, s.width)
		s.done = true
		return s
	}
	s.r = bufio.NewReaderSize(r, s.bufSize)
	return s
}

// Scan advances to the next kept record, which is then available through
// Record. It returns false at the end of input or on a read error.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	for {
		frag, more, err := s.r.ReadLine()
		if err != nil {
			return s.end(err)
		}
		if bytes.HasPrefix(frag, []byte(HeaderPrefix)) {
			// The flag must be read before the new header resets it.
			emit := s.keeping
			if emit {
				s.rec = s.finish()
			}
			header, err := s.readHeader(frag, more)
			if err != nil {
				return s.end(err)
			}
			s.header = header
			s.keeping = s.keep.Match(s.header)
			s.seq = nil
			if emit {
				return true
			}
			continue
		}
		if err := s.readSequence(frag, more); err != nil {
			return s.end(err)
		}
	}
}

// readHeader joins the fragments of a header line.
func (s *Scanner) readHeader(frag []byte, more bool) (string, error) {
	var b strings.Builder
	b.Write(frag)
	for more {
		var err error
		if frag, more, err = s.r.ReadLine(); err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		b.Write(frag)
	}
	return strings.TrimSpace(b.String()), nil
}

// readSequence appends the trimmed sequence line to the record being kept,
// or skips every fragment of it when the record was rejected.
func (s *Scanner) readSequence(frag []byte, more bool) error {
	start := len(s.seq)
	for {
		if s.keeping {
			s.seq = append(s.seq, frag...)
		}
		if !more {
			break
		}
		var err error
		if frag, more, err = s.r.ReadLine(); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	if s.keeping {
		line := bytes.TrimSpace(s.seq[start:])
		n := copy(s.seq[start:], line)
		s.seq = s.seq[:start+n]
	}
	return nil
}

// end finishes the stream: io.EOF flushes the last kept record, any other
// error is reported through Err.
func (s *Scanner) end(err error) bool {
	s.done = true
	if err != io.EOF {
		s.err = fmt.Errorf("fasta: read: %w", err)
		s.keeping = false
		s.seq = nil
		return false
	}
	if s.keeping {
		s.keeping = false
		s.rec = s.finish()
		s.seq = nil
		return true
	}
	return false
}

// Record returns the record found by the most recent call to Scan.
func (s *Scanner) Record() Record { return s.rec }

// Err returns the first non-EOF error encountered by the Scanner.
func (s *Scanner) Err() error { return s.err }

func (s *Scanner) finish() Record {
	seq := string(s.seq)
	if !s.raw {
		seq = strings.Join(chunk(seq, s.width), "\n")
	}
	return Record{Header: s.header, Sequence: seq}
}

// Records returns a single-use iterator over the kept records of r. Stopping
// the iteration early stops reading; closing r remains the caller's job. A
// read error is yielded once, as the final pair.
func Records(r io.Reader, keep Predicate, opts ...Option) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		s := NewScanner(r, keep, opts...)
		for s.Scan() {
			if !yield(s.Record(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}

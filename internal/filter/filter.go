// Package filter runs the FASTA header filter end to end: it compiles the
// search terms, streams the kept records and writes them to every output.
package filter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/lycantrope/fasta-filter/internal/fasta"
	"github.com/lycantrope/fasta-filter/internal/match"
)

// Options describes one filter run.
type Options struct {
	Terms      []string
	WrapWidth  int
	IgnoreCase bool
	Literal    bool

	// Logger receives progress events; nil disables logging.
	Logger *log.Logger
}

// Summary reports what a run wrote.
type Summary struct {
	Records  int
	Bases    int
	Duration time.Duration
}

// Predicate compiles the search terms of o.
func (o Options) Predicate() (*match.Matcher, error) {
	var mopts []match.Option
	if o.IgnoreCase {
		mopts = append(mopts, match.IgnoreCase())
	}
	if o.Literal {
		mopts = append(mopts, match.Literal())
	}
	return match.Compile(o.Terms, mopts...)
}

// Run filters in and writes each kept record to every writer in outs, in
// order. Configuration errors are returned before in is read. Cancelling ctx
// stops the run between records.
func Run(ctx context.Context, in io.Reader, o Options, outs ...io.Writer) (Summary, error) {
	start := time.Now()
	var sum Summary

	width := o.WrapWidth
	if width == 0 {
		width = fasta.DefaultWrapWidth
	}
	if width < 1 {
		return sum, fmt.Errorf("%w: got %d", fasta.ErrInvalidWidth, width)
	}
	pred, err := o.Predicate()
	if err != nil {
		return sum, err
	}
	if o.Logger != nil {
		o.Logger.Debug("compiled search terms", "terms", pred.Terms(), "wrap_width", width)
	}

	bufs := make([]*bufio.Writer, len(outs))
	writers := make([]*fasta.Writer, len(outs))
	for i, w := range outs {
		bufs[i] = bufio.NewWriter(w)
		writers[i] = fasta.NewWriter(bufs[i], 0)
	}
	flush := func() error {
		for _, b := range bufs {
			if err := b.Flush(); err != nil {
				return fmt.Errorf("flush output: %w", err)
			}
		}
		return nil
	}

	s := fasta.NewScanner(contextReader{ctx: ctx, r: in}, pred, fasta.WithWrapWidth(width))
	for s.Scan() {
		if err := ctx.Err(); err != nil {
			_ = flush()
			return sum, err
		}
		rec := s.Record()
		for _, w := range writers {
			if err := w.Write(rec); err != nil {
				return sum, fmt.Errorf("write record %s: %w", rec.Header, err)
			}
		}
		sum.Records++
		sum.Bases += utf8.RuneCountInString(fasta.Unwrap(rec.Sequence))
		if o.Logger != nil {
			o.Logger.Debug("kept record", "header", rec.Header)
		}
	}
	if err := s.Err(); err != nil {
		_ = flush()
		return sum, err
	}
	if err := flush(); err != nil {
		return sum, err
	}
	sum.Duration = time.Since(start)
	if o.Logger != nil {
		o.Logger.Info("filter finished", "records", sum.Records, "bases", sum.Bases, "duration_ms", sum.Duration.Milliseconds())
	}
	return sum, nil
}

// contextReader fails reads once ctx is done, so cancellation is seen even
// while only rejected records are being skipped.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

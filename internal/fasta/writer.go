package fasta

import (
	"fmt"
	"io"
)

// Writer writes records as a header line followed by the sequence lines.
type Writer struct {
	w       io.Writer
	width   int
	written int
}

// NewWriter returns a Writer on w. With width 0 sequences are written as
// stored, which is what a Scanner that already wrapped them needs; a positive
// width wraps raw sequences on output.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: w, width: width}
}

// Write emits rec. An empty sequence still produces an empty line so every
// record ends up as a two-part block.
func (w *Writer) Write(rec Record) error {
	seq := rec.Sequence
	if w.width != 0 {
		var err error
		if seq, err = WrapString(seq, w.width); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w.w, "%s\n%s\n", rec.Header, seq); err != nil {
		return err
	}
	w.written++
	return nil
}

// Records reports how many records have been written.
func (w *Writer) Records() int { return w.written }

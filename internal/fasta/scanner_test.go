package fasta

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contains(term string) Predicate {
	return PredicateFunc(func(h string) bool { return strings.Contains(h, term) })
}

func collect(t *testing.T, input string, keep Predicate, opts ...Option) []Record {
	t.Helper()
	var out []Record
	for rec, err := range Records(strings.NewReader(input), keep, opts...) {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keep  Predicate
		opts  []Option
		want  []Record
	}{
		{
			name:  "keeps only matching header",
			input: ">a\nACGT\n>b\nTTTT\n",
			keep:  contains("a"),
			want:  []Record{{Header: ">a", Sequence: "ACGT"}},
		},
		{
			name:  "concatenates and wraps",
			input: ">a desc\nAAAA\nCCCC\n",
			keep:  contains("desc"),
			opts:  []Option{WithWrapWidth(2)},
			want:  []Record{{Header: ">a desc", Sequence: "AA\nAA\nCC\nCC"}},
		},
		{
			name:  "no headers",
			input: "ACGT\nTTTT\n",
			keep:  All,
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			keep:  All,
			want:  nil,
		},
		{
			name:  "trailing record without following header",
			input: ">x\nAAA\n>y\nCC\nGG",
			keep:  contains("y"),
			want:  []Record{{Header: ">y", Sequence: "CCGG"}},
		},
		{
			name:  "rejected header between kept ones",
			input: ">keep1\nAA\n>drop\nTT\n>keep2\nGG\n",
			keep:  contains("keep"),
			want: []Record{
				{Header: ">keep1", Sequence: "AA"},
				{Header: ">keep2", Sequence: "GG"},
			},
		},
		{
			name:  "rejected header does not flush on next header",
			input: ">drop1\nAA\n>drop2\nTT\n>keep\nGG\n",
			keep:  contains("keep"),
			want:  []Record{{Header: ">keep", Sequence: "GG"}},
		},
		{
			name:  "strips whitespace and carriage returns",
			input: ">a  \r\n  AC GT \r\n\tTT\r\n",
			keep:  All,
			want:  []Record{{Header: ">a", Sequence: "AC GTTT"}},
		},
		{
			name:  "kept record with empty sequence",
			input: ">a\n>b\nAC\n",
			keep:  All,
			want:  []Record{{Header: ">a", Sequence: ""}, {Header: ">b", Sequence: "AC"}},
		},
		{
			name:  "sequence before first header ignored",
			input: "NNNN\n>a\nAC\n",
			keep:  All,
			want:  []Record{{Header: ">a", Sequence: "AC"}},
		},
		{
			name:  "raw sequence is not wrapped",
			input: ">a\nAAAA\nCCCC\n",
			keep:  All,
			opts:  []Option{WithWrapWidth(2), WithRawSequence()},
			want:  []Record{{Header: ">a", Sequence: "AAAACCCC"}},
		},
		{
			name:  "indented header is sequence data",
			input: ">a\n >b\n",
			keep:  All,
			want:  []Record{{Header: ">a", Sequence: ">b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, tt.input, tt.keep, tt.opts...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordsCountMatchesKeptHeaders(t *testing.T) {
	var b strings.Builder
	kept := 0
	for i := 0; i < 50; i++ {
		if i%3 == 0 {
			b.WriteString(">keep\n")
			kept++
		} else {
			b.WriteString(">drop\n")
		}
		b.WriteString(strings.Repeat("ACGT", i) + "\n")
	}
	got := collect(t, b.String(), contains("keep"))
	assert.Len(t, got, kept)
}

func TestRecordsRoundTrip(t *testing.T) {
	lines := []string{"ACGTACGTAC", "GGGTTTAAAC", "TTA"}
	input := ">r\n" + strings.Join(lines, "\n") + "\n"
	for _, width := range []int{1, 3, 7, 10, 23, 80} {
		got := collect(t, input, All, WithWrapWidth(width))
		require.Len(t, got, 1)
		assert.Equal(t, strings.Join(lines, ""), Unwrap(got[0].Sequence), "width %d", width)
	}
}

func TestRecordsRoundTripMultiByte(t *testing.T) {
	lines := []string{"αβγδε", "ζηθ", "ικλμν"}
	input := ">greek\n" + strings.Join(lines, "\n") + "\n"
	for _, width := range []int{1, 2, 4, 80} {
		got := collect(t, input, All, WithWrapWidth(width))
		require.Len(t, got, 1)
		assert.Equal(t, strings.Join(lines, ""), Unwrap(got[0].Sequence), "width %d", width)
		for _, l := range strings.Split(got[0].Sequence, "\n") {
			assert.True(t, utf8.ValidString(l))
		}
	}
}

func TestRecordsInvalidWidth(t *testing.T) {
	var errs []error
	for _, err := range Records(strings.NewReader(">a\nAC\n"), All, WithWrapWidth(0)) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInvalidWidth)
}

func TestRecordsStopEarly(t *testing.T) {
	input := ">a\nAA\n>b\nCC\n>c\nGG\n"
	var seen []string
	for rec, err := range Records(strings.NewReader(input), All) {
		require.NoError(t, err)
		seen = append(seen, rec.Header)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{">a", ">b"}, seen)
}

func TestScannerLongLines(t *testing.T) {
	long := strings.Repeat("ACGT", 100)
	tests := []struct {
		name  string
		input string
		keep  Predicate
		want  []Record
	}{
		{
			name:  "rejected long line is skipped",
			input: ">drop\n" + long + "\n>keep\nAC\n",
			keep:  contains("keep"),
			want:  []Record{{Header: ">keep", Sequence: "AC"}},
		},
		{
			name:  "kept long line is joined and trimmed",
			input: ">keep\n   " + long + "   \r\nTT\n",
			keep:  contains("keep"),
			want:  []Record{{Header: ">keep", Sequence: long + "TT"}},
		},
		{
			name:  "long header",
			input: ">keep " + strings.Repeat("x", 100) + "  \n" + long,
			keep:  contains("keep"),
			want:  []Record{{Header: ">keep " + strings.Repeat("x", 100), Sequence: long}},
		},
		{
			name:  "long header rejected by its tail",
			input: ">" + strings.Repeat("y", 60) + " keep\nAC\n>" + strings.Repeat("z", 60) + "\nGG\n",
			keep:  contains("keep"),
			want:  []Record{{Header: ">" + strings.Repeat("y", 60) + " keep", Sequence: "AC"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, tt.input, tt.keep, WithRawSequence(), WithBufferSize(16))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScannerLongRejectedLineIsNotBuffered(t *testing.T) {
	s := NewScanner(strings.NewReader(">drop\n"+strings.Repeat("A", 4096)+"\n"), contains("keep"), WithBufferSize(16))
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
	assert.Zero(t, cap(s.seq))
}

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestScannerPropagatesReadError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScanner(&failingReader{data: ">a\nAC\n", err: boom}, All)
	var got []Record
	for s.Scan() {
		got = append(got, s.Record())
	}
	assert.Empty(t, got)
	assert.ErrorIs(t, s.Err(), boom)
}

func TestScannerDoesNotBufferRejected(t *testing.T) {
	s := NewScanner(strings.NewReader(">drop\nAAAA\nCCCC\n"), contains("keep"))
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
	assert.Zero(t, len(s.seq))
}

func TestScannerExhausted(t *testing.T) {
	s := NewScanner(strings.NewReader(">a\nAC\n"), All)
	assert.True(t, s.Scan())
	assert.False(t, s.Scan())
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

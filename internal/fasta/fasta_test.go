package fasta

import (
	"strings"
	"testing"
)

func TestParseFastaSimple(t *testing.T) {
	input := ">seq1\nATGC\n>seq2 desc\nGGTT\n"
	recs, err := ParseFasta(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Header != ">seq1" || recs[0].Sequence != "ATGC" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Header != ">seq2 desc" || recs[1].Sequence != "GGTT" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestParseFastaDoesNotWrap(t *testing.T) {
	seq := strings.Repeat("A", 200)
	recs, err := ParseFasta(strings.NewReader(">long\n" + seq + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Sequence != seq {
		t.Fatalf("expected one unwrapped record, got %+v", recs)
	}
}

func TestCollectLastHeaderWins(t *testing.T) {
	input := ">dup\nAAAA\n>other\nCCCC\n>dup\nGGGG\n"
	m, err := Collect(strings.NewReader(input), All)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 distinct headers, got %d", len(m))
	}
	if m[">dup"] != "GGGG" {
		t.Fatalf("expected last duplicate to win, got %q", m[">dup"])
	}
}

func TestRecordIDAndDescription(t *testing.T) {
	r := Record{Header: ">sp|P12345|GENE_HUMAN Some protein OS=Homo sapiens"}
	if got := r.ID(); got != "sp|P12345|GENE_HUMAN" {
		t.Fatalf("unexpected id %q", got)
	}
	if got := r.Description(); got != "Some protein OS=Homo sapiens" {
		t.Fatalf("unexpected description %q", got)
	}
	bare := Record{Header: ">only"}
	if bare.ID() != "only" || bare.Description() != "" {
		t.Fatalf("unexpected split for bare header: %q %q", bare.ID(), bare.Description())
	}
}

package core

import (
	"testing"
)

func TestDocIDFromEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  DocID
	}{
		{
			name:  "nested entry with extension",
			entry: "2024/2024-0123.xml",
			want:  "2024-0123",
		},
		{
			name:  "flat entry",
			entry: "1999-0007.xml",
			want:  "1999-0007",
		},
		{
			name:  "no extension",
			entry: "2024/2024-0123",
			want:  "2024-0123",
		},
		{
			name:  "dotted base name keeps inner dots",
			entry: "2024/act.v2.xml",
			want:  "act.v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocIDFromEntry(tt.entry); got != tt.want {
				t.Errorf("DocIDFromEntry(%q) = %q, want %q", tt.entry, got, tt.want)
			}
		})
	}
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("statute text"))
	h2 := HashBytes([]byte("statute text"))
	if h1 != h2 {
		t.Errorf("HashBytes() produced different hashes for same content: %d vs %d", h1, h2)
	}

	h3 := HashBytes([]byte("statute text."))
	if h1 == h3 {
		t.Errorf("HashBytes() produced same hash for different content")
	}
}

func TestStage_String(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageFetch, "fetch"},
		{StageParse, "parse"},
		{StageChunk, "chunk"},
		{StageEmbed, "embed"},
		{StageIndex, "index"},
		{Stage(0), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

func TestStages_Order(t *testing.T) {
	stages := Stages()
	if len(stages) != 5 {
		t.Fatalf("Stages() returned %d stages, want 5", len(stages))
	}
	for i := 1; i < len(stages); i++ {
		if stages[i] <= stages[i-1] {
			t.Errorf("Stages() out of order at %d: %v", i, stages)
		}
	}
}

func TestFormatFromEntry(t *testing.T) {
	tests := []struct {
		entry string
		want  SourceFormat
	}{
		{"2024/2024-0123.xml", FormatXML},
		{"2024/notice.HTML", FormatHTML},
		{"2024/ruling.htm", FormatHTML},
		{"2024/gazette.pdf", FormatPDF},
		{"2024/readme", FormatText},
		{"2024/notes.txt", FormatText},
	}

	for _, tt := range tests {
		if got := FormatFromEntry(tt.entry); got != tt.want {
			t.Errorf("FormatFromEntry(%q) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}

func TestParsedDocument_NormalizedText(t *testing.T) {
	tests := []struct {
		name string
		doc  ParsedDocument
		want string
	}{
		{
			name: "title and sections",
			doc: ParsedDocument{
				Title: "Data Act",
				Sections: []Section{
					{Number: "1", Heading: "Scope", Text: "This act applies."},
					{Number: "2", Heading: "Terms", Text: "Terms are defined."},
				},
			},
			want: "Data Act\n\nScope\nThis act applies.\n\nTerms\nTerms are defined.",
		},
		{
			name: "no title",
			doc: ParsedDocument{
				Sections: []Section{{Text: "Unstructured body."}},
			},
			want: "Unstructured body.",
		},
		{
			name: "section without heading",
			doc: ParsedDocument{
				Title:    "Notice",
				Sections: []Section{{Text: "Body only."}},
			},
			want: "Notice\n\nBody only.",
		},
		{
			name: "empty document",
			doc:  ParsedDocument{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.NormalizedText(); got != tt.want {
				t.Errorf("NormalizedText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsedDocument_NormalizedTextDeterministic(t *testing.T) {
	doc := ParsedDocument{
		Title: "Act",
		Sections: []Section{
			{Number: "1", Heading: "One", Text: "First."},
			{Number: "2", Heading: "Two", Text: "Second."},
		},
	}
	if doc.NormalizedText() != doc.NormalizedText() {
		t.Errorf("NormalizedText() not stable across calls")
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("2024-0123", 0); got != "2024-0123-0" {
		t.Errorf("ChunkID() = %q, want %q", got, "2024-0123-0")
	}
	if got := ChunkID("2024-0123", 17); got != "2024-0123-17" {
		t.Errorf("ChunkID() = %q, want %q", got, "2024-0123-17")
	}
}

func TestStageReport_Totals(t *testing.T) {
	report := StageReport{
		Stage:     StageParse,
		Succeeded: 3,
		Skipped:   2,
		Failed: []FailedDoc{
			{Id: "2024-0001", Reason: "malformed markup"},
			{Id: "2024-0002", Reason: "empty text"},
		},
	}

	if got := report.Total(); got != 7 {
		t.Errorf("Total() = %d, want 7", got)
	}

	ids := report.FailedIDs()
	if len(ids) != 2 || ids[0] != "2024-0001" || ids[1] != "2024-0002" {
		t.Errorf("FailedIDs() = %v", ids)
	}
}

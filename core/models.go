package core

import (
	"encoding/binary"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocID is the stable identifier of one source document. It is derived from
// the archive's own naming, so every stage and every rerun addresses the
// same document under the same key.
type DocID string

// DocIDFromEntry derives a DocID from an archive entry path by taking the
// base name and stripping the extension ("2024/2024-0123.xml" -> "2024-0123").
func DocIDFromEntry(entry string) DocID {
	base := path.Base(entry)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return DocID(base)
}

// Partition is an independently processable slice of the corpus, such as a
// publication year. Stage runs target a set of partitions.
type Partition string

// PartitionForYear returns the partition key for a calendar year.
func PartitionForYear(year int) Partition {
	return Partition(strconv.Itoa(year))
}

// HashBytes generates a deterministic 64-bit content hash using BLAKE2b.
// Checkpoint marks store it to detect outputs whose input changed since.
func HashBytes(data []byte) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Stage identifies one pipeline stage.
type Stage int

const (
	// StageFetch downloads the source archive and extracts raw documents.
	StageFetch Stage = iota + 1
	// StageParse converts raw markup into normalized documents.
	StageParse
	// StageChunk splits normalized text into token windows.
	StageChunk
	// StageEmbed attaches embedding vectors to chunks.
	StageEmbed
	// StageIndex upserts embedded chunks into the search index.
	StageIndex
)

// Stages returns all pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageFetch, StageParse, StageChunk, StageEmbed, StageIndex}
}

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageParse:
		return "parse"
	case StageChunk:
		return "chunk"
	case StageEmbed:
		return "embed"
	case StageIndex:
		return "index"
	default:
		return "unknown"
	}
}

// SourceFormat identifies the markup family of a raw document.
type SourceFormat string

const (
	// FormatXML is structured statute markup.
	FormatXML SourceFormat = "xml"
	// FormatHTML is tag-based markup without a statute schema.
	FormatHTML SourceFormat = "html"
	// FormatPDF is a PDF byte stream.
	FormatPDF SourceFormat = "pdf"
	// FormatText is plain unstructured text.
	FormatText SourceFormat = "text"
)

// FormatFromEntry derives the source format from an archive entry's
// extension. Unknown extensions are treated as plain text.
func FormatFromEntry(entry string) SourceFormat {
	switch strings.ToLower(path.Ext(entry)) {
	case ".xml":
		return FormatXML
	case ".html", ".htm":
		return FormatHTML
	case ".pdf":
		return FormatPDF
	default:
		return FormatText
	}
}

// RawDocument is one extracted archive entry, exactly as fetched.
// It is immutable once written.
type RawDocument struct {
	Id           DocID
	Partition    Partition
	SourceName   string // entry path inside the archive
	SourceFormat SourceFormat
	Content      []byte
	FetchedAt    time.Time
}

// Section is one structural unit of a parsed document. Order matters.
type Section struct {
	Number  string
	Heading string
	Text    string
}

// ParsedDocument is the normalized form of exactly one RawDocument,
// sharing its id.
type ParsedDocument struct {
	Id           DocID
	Partition    Partition
	Title        string
	Sections     []Section
	DocumentType string
	Date         time.Time // publication or enactment date from the markup
	ParsedAt     time.Time
}

// NormalizedText returns the canonical chunking input: the title followed by
// each section's heading and body in document order. Unchanged input always
// yields the same text.
func (d *ParsedDocument) NormalizedText() string {
	var b strings.Builder
	if d.Title != "" {
		b.WriteString(d.Title)
	}
	for i := range d.Sections {
		s := &d.Sections[i]
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteString("\n")
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// Chunk is one token-bounded window of a document's normalized text.
// Offsets are token positions, half-open [StartOffset, EndOffset).
type Chunk struct {
	Id          string
	DocId       DocID
	Seq         int
	Text        string
	TokenCount  int
	StartOffset int
	EndOffset   int
}

// ChunkID builds the identifier for a document's chunk at a sequence
// position. Index upserts key on it, so replaying a chunk overwrites
// rather than duplicates.
func ChunkID(id DocID, seq int) string {
	return string(id) + "-" + strconv.Itoa(seq)
}

// EmbeddedChunk is a Chunk with its embedding vector attached.
type EmbeddedChunk struct {
	Chunk
	Vector []float32
}

// StageMark is a checkpoint entry recording that a stage completed one
// document. InputHash is the content hash of the stage's input at completion
// time; a changed input invalidates the mark.
type StageMark struct {
	DocId       DocID
	Stage       Stage
	InputHash   uint64
	CompletedAt time.Time
}

// IndexReceipt records a completed index upsert for one document.
type IndexReceipt struct {
	DocId     DocID
	Records   int
	IndexedAt time.Time
}

// FailedDoc names a document that failed within a stage run.
type FailedDoc struct {
	Id     DocID
	Reason string
}

// StageReport summarizes one stage run: documents processed, documents
// skipped as already complete, and per-document failures. Per-item failures
// live here rather than in the run's error.
type StageReport struct {
	Stage      Stage
	Partitions []Partition
	Succeeded  int
	Skipped    int
	Failed     []FailedDoc
	StartedAt  time.Time
	Duration   time.Duration
}

// Total returns the number of documents the stage examined.
func (r *StageReport) Total() int {
	return r.Succeeded + r.Skipped + len(r.Failed)
}

// FailedIDs returns the ids of all failed documents.
func (r *StageReport) FailedIDs() []DocID {
	ids := make([]DocID, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.Id)
	}
	return ids
}

package parser

import (
	"fmt"
	"time"

	"github.com/poiesic/lexit/core"
)

// Parser converts one RawDocument into its normalized form.
type Parser struct{}

// New creates a new Parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts title, sections, and metadata from a raw document.
//
// Statute XML parses into numbered sections. Anything else, including XML
// that does not follow the statute schema, goes through the tag-strip
// fallback and comes back as a single unstructured section. The error is
// per-document: ErrMalformedDocument or ErrEmptyDocument mean this document
// is unusable, not that the stage should stop.
func (p *Parser) Parse(raw *core.RawDocument) (*core.ParsedDocument, error) {
	if err := core.ValidateRawDocument(raw); err != nil {
		return nil, err
	}

	var (
		doc *core.ParsedDocument
		err error
	)
	switch raw.SourceFormat {
	case core.FormatXML:
		doc, err = parseStatute(raw)
		if err != nil {
			// Not statute markup. The fallback still gets a chance.
			doc = parseFallback(raw)
		}
	case core.FormatPDF:
		doc, err = parsePDF(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	default:
		doc = parseFallback(raw)
	}

	doc.Id = raw.Id
	doc.Partition = raw.Partition
	doc.ParsedAt = time.Now().UTC()

	if doc.NormalizedText() == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, raw.Id)
	}
	return doc, nil
}

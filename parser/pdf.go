package parser

import (
	"bytes"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/lexit/core"
)

// parsePDF extracts plain text from a PDF byte stream as one unstructured
// section. PDFs carry no statute structure, so the title falls back to the
// first short text line.
func parsePDF(raw *core.RawDocument) (*core.ParsedDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, err
	}

	text := stripTags(buf.String())
	doc := &core.ParsedDocument{Title: extractTitle(buf.String())}
	if text != "" {
		doc.Sections = []core.Section{{Text: text}}
	}
	return doc, nil
}

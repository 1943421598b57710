package parser

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/lexit/core"
)

// statuteDateLayout is the date attribute format in the bulk archive.
const statuteDateLayout = "2006-01-02"

// statuteXML mirrors the archive's statute markup:
//
//	<statute id="2024/123" date="2024-03-15" type="act">
//	  <title>...</title>
//	  <section number="1">
//	    <heading>...</heading>
//	    <paragraph>...</paragraph>
//	  </section>
//	</statute>
type statuteXML struct {
	XMLName  xml.Name     `xml:"statute"`
	Number   string       `xml:"id,attr"`
	Date     string       `xml:"date,attr"`
	Type     string       `xml:"type,attr"`
	Title    string       `xml:"title"`
	Sections []sectionXML `xml:"section"`
}

type sectionXML struct {
	Number     string   `xml:"number,attr"`
	Heading    string   `xml:"heading"`
	Paragraphs []string `xml:"paragraph"`
}

// parseStatute decodes statute XML into a ParsedDocument. An error means
// the bytes are not statute markup; callers decide whether to fall back.
func parseStatute(raw *core.RawDocument) (*core.ParsedDocument, error) {
	var statute statuteXML
	if err := xml.Unmarshal(raw.Content, &statute); err != nil {
		return nil, fmt.Errorf("statute markup: %w", err)
	}

	doc := &core.ParsedDocument{
		Title:        strings.TrimSpace(statute.Title),
		DocumentType: strings.TrimSpace(statute.Type),
	}

	// Date is best-effort metadata; a bad attribute stays zero.
	if statute.Date != "" {
		if date, err := time.Parse(statuteDateLayout, statute.Date); err == nil {
			doc.Date = date
		}
	}

	for _, s := range statute.Sections {
		paragraphs := make([]string, 0, len(s.Paragraphs))
		for _, p := range s.Paragraphs {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				paragraphs = append(paragraphs, trimmed)
			}
		}
		text := strings.Join(paragraphs, "\n")
		if text == "" && s.Heading == "" {
			continue
		}
		doc.Sections = append(doc.Sections, core.Section{
			Number:  strings.TrimSpace(s.Number),
			Heading: strings.TrimSpace(s.Heading),
			Text:    text,
		})
	}

	if doc.Title == "" && len(doc.Sections) == 0 {
		return nil, fmt.Errorf("statute markup: no title or sections")
	}
	return doc, nil
}

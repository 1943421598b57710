package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/poiesic/lexit/core"
)

// Pre-compiled expressions for the tag-strip path.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	xmlComments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|section|article|title|heading|paragraph)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// maxFallbackTitle caps how much of the first text line becomes the title.
const maxFallbackTitle = 200

// parseFallback turns any tag-based or plain-text document into a single
// unstructured section with a best-effort title. It never fails; an empty
// result is caught by the caller's empty-text check.
func parseFallback(raw *core.RawDocument) *core.ParsedDocument {
	content := string(raw.Content)

	title := extractTitle(content)
	text := stripTags(content)

	// Don't repeat the title as body when it is the whole first line.
	if title != "" && strings.HasPrefix(text, title) {
		trimmed := strings.TrimSpace(strings.TrimPrefix(text, title))
		if trimmed != "" {
			text = trimmed
		}
	}

	doc := &core.ParsedDocument{Title: title}
	if text != "" {
		doc.Sections = []core.Section{{Text: text}}
	}
	return doc
}

// extractTitle takes the <title> element when present, otherwise the first
// short text line.
func extractTitle(content string) string {
	if matches := titleTag.FindStringSubmatch(content); len(matches) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(matches[1])); title != "" {
			return title
		}
	}
	for _, line := range strings.Split(stripTags(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) <= maxFallbackTitle {
			return line
		}
		return ""
	}
	return ""
}

// stripTags converts markup to plain text: block closers become line
// breaks, remaining tags vanish, entities decode, whitespace collapses.
func stripTags(content string) string {
	text := scriptTag.ReplaceAllString(content, "")
	text = styleTag.ReplaceAllString(text, "")
	text = xmlComments.ReplaceAllString(text, "")
	text = brTags.ReplaceAllString(text, "\n")
	text = blockElements.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

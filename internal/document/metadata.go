package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fallback values for metadata extraction over malformed documents.
const (
	FallbackTitle  = "Untitled Proposal"
	FallbackClient = "Unknown Client"
)

// Metadata is the structured metadata derived from a canonical document.
// Reused across preview, history, and export.
type Metadata struct {
	Title        string
	Client       string
	SectionCount int
}

// Extract derives all metadata fields from the document HTML.
func Extract(html string) Metadata {
	doc := parse(html)
	return Metadata{
		Title:        title(doc),
		Client:       client(doc),
		SectionCount: sectionCount(doc),
	}
}

// Title returns the proposal title: the first h1 inside the header block,
// else the first h1 anywhere, else FallbackTitle.
func Title(html string) string { return title(parse(html)) }

// Client returns the client name from the header's "Client: ..." meta line,
// trimmed up to the next field separator, else FallbackClient.
func Client(html string) string { return client(parse(html)) }

// SectionCount returns the number of section blocks in the document.
// This reflects what the agent actually produced, which can diverge from
// the depth the prompt requested.
func SectionCount(html string) int { return sectionCount(parse(html)) }

// parse builds a queryable document. The underlying parser accepts arbitrary
// malformed input, so extraction never fails; a nil document stands in for
// the unreachable reader-error case and yields fallbacks.
func parse(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

func title(doc *goquery.Document) string {
	if doc == nil {
		return FallbackTitle
	}
	if t := strings.TrimSpace(doc.Find("header h1").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return FallbackTitle
}

func client(doc *goquery.Document) string {
	if doc == nil {
		return FallbackClient
	}
	meta := doc.Find("p.meta").First().Text()
	idx := strings.Index(meta, "Client:")
	if idx < 0 {
		return FallbackClient
	}
	name := meta[idx+len("Client:"):]
	if sep := strings.IndexByte(name, '|'); sep >= 0 {
		name = name[:sep]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return FallbackClient
	}
	return name
}

func sectionCount(doc *goquery.Document) int {
	if doc == nil {
		return 0
	}
	return doc.Find("section").Length()
}

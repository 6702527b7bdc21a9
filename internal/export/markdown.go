package export

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// blankRuns matches runs of three or more newlines for collapsing.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// ToMarkdown converts canonical document HTML to Markdown by walking the
// parsed node tree rather than chaining tag substitutions:
//
//   - h1/h2/h3 become #/##/### headings
//   - <strong> text keeps ** markers
//   - <p> becomes a paragraph, <li> a "- " list item
//   - <footer> becomes a horizontal rule followed by its content
//   - header/section/div/ul and unknown tags are unwrapped
//
// Heading text and bold-marked text survive verbatim; runs of three or more
// blank lines collapse to one blank line.
func ToMarkdown(source string) string {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		// The parser accepts arbitrary input; a failure here means the
		// reader broke, which strings.Reader cannot.
		return strings.TrimSpace(source)
	}

	var b strings.Builder
	renderBlock(&b, root)

	out := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out)
}

// renderBlock walks block-level structure, delegating heading, paragraph,
// and list-item content to renderInline.
func renderBlock(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3":
			b.WriteString(strings.Repeat("#", int(n.Data[1]-'0')))
			b.WriteString(" ")
			b.WriteString(renderInline(n))
			b.WriteString("\n\n")
			return
		case "p":
			b.WriteString(renderInline(n))
			b.WriteString("\n\n")
			return
		case "li":
			b.WriteString("- ")
			b.WriteString(renderInline(n))
			b.WriteString("\n")
			return
		case "footer":
			b.WriteString("\n---\n")
		case "section":
			b.WriteString("\n")
			defer b.WriteString("\n")
		case "script", "style":
			return
		}
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderBlock(b, c)
	}
}

// renderInline flattens an element's content to text, keeping ** markers
// around strong runs and stripping every other tag.
func renderInline(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		inlineNode(&b, c)
	}
	return strings.TrimSpace(b.String())
}

func inlineNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "strong" || n.Data == "b" {
			b.WriteString("**")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				inlineNode(b, c)
			}
			b.WriteString("**")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			inlineNode(b, c)
		}
	}
}

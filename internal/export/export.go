// Package export renders canonical proposal documents to their export
// formats: a standalone styled HTML file, a Markdown transcription, and the
// verbatim clipboard text.
package export

import (
	"fmt"
	"strings"

	"github.com/proposalstudio/proposalstudio/internal/document"
)

// styleBlock is the fixed style sheet embedded in standalone HTML exports.
const styleBlock = `body { font-family: Georgia, 'Times New Roman', serif; max-width: 900px; margin: 0 auto; padding: 2rem; color: #2b2724; background: #fcfcfc; }
header { margin-bottom: 2rem; padding-bottom: 1rem; border-bottom: 2px solid #e0d9d1; }
header h1 { font-size: 1.75rem; font-weight: 400; letter-spacing: 0.08em; margin: 0 0 0.5rem 0; }
header .meta { font-size: 0.8125rem; font-weight: 300; color: #8a8078; }
section { margin-bottom: 2rem; padding: 1.5rem; border: 1px solid #e0d9d1; }
.body h1 { font-size: 1.25rem; font-weight: 400; letter-spacing: 0.06em; border-bottom: 1px solid #e0d9d1; padding-bottom: 0.5rem; margin-bottom: 0.75rem; }
.body p { font-size: 0.875rem; font-weight: 300; line-height: 1.8; margin-bottom: 0.625rem; }
strong { font-weight: 500; color: #8b7236; }
footer { margin-top: 2rem; padding-top: 1rem; border-top: 2px solid #e0d9d1; font-size: 0.8125rem; font-weight: 300; color: #8a8078; }`

// HTML renders the document as a standalone HTML file.
// The filename is derived from the extracted title with whitespace replaced
// by underscores.
func HTML(doc document.Document) (filename, content string) {
	title := document.Title(doc.HTML)
	content = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
%s
</body>
</html>`, title, styleBlock, doc.HTML)
	return Filename(title, "html"), content
}

// Markdown renders the document as Markdown via structural substitution.
func Markdown(doc document.Document) (filename, content string) {
	title := document.Title(doc.HTML)
	return Filename(title, "md"), ToMarkdown(doc.HTML)
}

// Clipboard returns the raw canonical document text, copied verbatim.
func Clipboard(doc document.Document) string {
	return doc.HTML
}

// Filename derives an export file name from a title: whitespace runs become
// single underscores.
func Filename(title, ext string) string {
	return strings.Join(strings.Fields(title), "_") + "." + ext
}

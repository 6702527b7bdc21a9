// Package prompt compiles accumulated conversation context into the agent
// invocation request.
//
// Compile is a pure function: the same turns and options always produce the
// same string, which keeps the compiler testable with golden output and
// independent of the remote agent.
package prompt

import (
	"fmt"
	"strings"

	"github.com/proposalstudio/proposalstudio/internal/ledger"
)

// Depth is the requested section count for a generation.
type Depth int

// Supported depths.
const (
	Depth15 Depth = 15
	Depth30 Depth = 30
)

// Sections returns the number of sections the depth requests.
func (d Depth) Sections() int { return int(d) }

// String returns the label used in prompts and document metadata, e.g. "15-slide".
func (d Depth) String() string { return fmt.Sprintf("%d-slide", int(d)) }

// Options are the per-invocation generation settings.
// Immutable per invocation; supplied by the caller.
type Options struct {
	Depth             Depth
	ToneInstitutional bool
	SuppressMarketing bool
}

// Tone directive text emitted based on Options.
const (
	toneInstitutional = "Use an institutional, formal tone appropriate for senior executives."
	toneApproachable  = "Use a professional yet approachable tone."
	suppressMarketing = "Suppress all marketing language and hyperbolic claims."
)

// Compile builds the agent request from the ledger turns and options.
//
// The output contains, in order: the framing and tone directives, the client
// context block (user turn contents in ledger order separated by blank
// lines), and the explicit output-format contract requiring raw HTML in the
// canonical header/sections/footer grammar with no code fences or JSON.
func Compile(turns []ledger.Turn, opts Options) string {
	var context []string
	for _, t := range turns {
		if t.Role == ledger.RoleUser {
			context = append(context, t.Content)
		}
	}

	tone := toneApproachable
	if opts.ToneInstitutional {
		tone = toneInstitutional
	}
	marketing := ""
	if opts.SuppressMarketing {
		marketing = suppressMarketing
	}

	n := opts.Depth.Sections()

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %d-slide executive proposal based on the following context.\n\n", n)
	b.WriteString("Setting: Venture capital investment review.\n")
	b.WriteString("Audience: Internal investment committee partners.\n")
	b.WriteString(tone)
	b.WriteString("\n")
	b.WriteString(marketing)
	b.WriteString("\n\nClient Context:\n")
	b.WriteString(strings.Join(context, "\n\n"))
	b.WriteString("\n\nOUTPUT FORMAT: Return ONLY raw HTML. No JSON, no markdown, no code fences.\n\n")
	b.WriteString("Start with:\n<header>\n<h1>{Proposal Title}</h1>\n")
	fmt.Fprintf(&b, "<p class=\"meta\">Client: {name} | Deck: %d-slide | Slides: %d</p>\n</header>\n\n", n, n)
	fmt.Fprintf(&b, "Then each slide as, numbered 1 through %d:\n", n)
	b.WriteString("<section n=\"{number}\" id=\"lc{zero_padded}\">\n<div class=\"body\">\n")
	b.WriteString("    <h1>{Slide Title}</h1>\n")
	b.WriteString("    <p>[30-40 words, factual]</p>\n")
	b.WriteString("    <p>[30-40 words, data-grounded]</p>\n")
	b.WriteString("    <p><strong>[30-40 words, key recommendation]</strong></p>\n")
	b.WriteString("</div>\n</section>\n\n")
	b.WriteString("End with:\n<footer class=\"validation\">\n<p>[Validation summary]</p>\n</footer>")

	return b.String()
}

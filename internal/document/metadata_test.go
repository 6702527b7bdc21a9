package document

import "testing"

// wellFormed is a canonical document: one header with title and meta line,
// five numbered sections, one validation footer.
const wellFormed = `<header>
<h1>Digital Transformation Strategy for Meridian Financial</h1>
<p class="meta">Client: Meridian Financial Group | Deck: 15-slide Summary | Slides: 15</p>
</header>

<section n="1" id="lc01">
<div class="body">
    <h1>Executive Summary</h1>
    <p>Meridian Financial faces a critical inflection point in digital capabilities.</p>
    <p>Projected outcomes include 35% operational efficiency gain.</p>
    <p><strong>We recommend immediate approval of this transformation initiative.</strong></p>
</div>
</section>

<section n="2" id="lc02">
<div class="body">
    <h1>Current State Assessment</h1>
    <p>Legacy core banking platform limits product velocity significantly.</p>
    <p>Manual processes consume 40% of middle-office capacity.</p>
    <p><strong>Without intervention, current trajectory projects further NPS erosion.</strong></p>
</div>
</section>

<section n="3" id="lc03">
<div class="body"><h1>Proposed Solution Architecture</h1><p>Pillar 1: API-first core modernization.</p></div>
</section>

<section n="4" id="lc04">
<div class="body"><h1>ROI and Financial Impact</h1><p>Year 1 savings of $1.8M.</p></div>
</section>

<section n="5" id="lc05">
<div class="body"><h1>Phased Delivery Roadmap</h1><p>Phase 1 (Months 1-4): Foundation.</p></div>
</section>

<footer class="validation">
<p><strong>Validation Complete</strong> -- All financial projections cross-referenced.</p>
</footer>`

func TestExtractWellFormed(t *testing.T) {
	t.Parallel()

	meta := Extract(wellFormed)
	if meta.Title != "Digital Transformation Strategy for Meridian Financial" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Client != "Meridian Financial Group" {
		t.Errorf("Client = %q, want %q", meta.Client, "Meridian Financial Group")
	}
	// The count reflects the actual document, not the requested depth: a
	// 15-slide request that produced 5 sections reports 5.
	if meta.SectionCount != 5 {
		t.Errorf("SectionCount = %d, want 5", meta.SectionCount)
	}
}

func TestTitleFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "heading inside header wins",
			html: `<h1>Loose</h1><header><h1>Header Title</h1></header>`,
			want: "Header Title",
		},
		{
			name: "first heading anywhere without header",
			html: `<section><h1>Section Title</h1></section>`,
			want: "Section Title",
		},
		{
			name: "no heading at all",
			html: `<p>just a paragraph</p>`,
			want: FallbackTitle,
		},
		{
			name: "empty document",
			html: "",
			want: FallbackTitle,
		},
		{
			name: "unclosed tags",
			html: `<header><h1>Broken`,
			want: "Broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Title(tt.html); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "client with trailing fields",
			html: `<p class="meta">Client: Acme Corp | Deck: 30-slide</p>`,
			want: "Acme Corp",
		},
		{
			name: "client without separator",
			html: `<p class="meta">Client: Acme Corp</p>`,
			want: "Acme Corp",
		},
		{
			name: "meta line without client label",
			html: `<p class="meta">Deck: 15-slide</p>`,
			want: FallbackClient,
		},
		{
			name: "no meta line",
			html: `<header><h1>Title</h1></header>`,
			want: FallbackClient,
		},
		{
			name: "empty client value",
			html: `<p class="meta">Client: | Deck: 15</p>`,
			want: FallbackClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Client(tt.html); got != tt.want {
				t.Errorf("Client() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSectionCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want int
	}{
		{name: "five sections", html: wellFormed, want: 5},
		{name: "zero sections", html: `<header><h1>T</h1></header>`, want: 0},
		{name: "empty document", html: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SectionCount(tt.html); got != tt.want {
				t.Errorf("SectionCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

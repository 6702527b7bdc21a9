// Package document defines the canonical proposal document and the parsing
// that surrounds it: normalizing the agent's variably-shaped response payload
// into document HTML, and deriving structured metadata (title, client name,
// section count) from that HTML.
//
// The canonical grammar is one <header> block with a title and a
// "Client: ... | ..." meta line, an ordered sequence of <section> blocks,
// and one <footer> validation block. All parsing here is tolerant: malformed
// or partial documents produce fallback values, never errors or panics.
package document

import "time"

// Document is a canonical proposal document.
type Document struct {
	HTML string `json:"html"`
}

// Proposal couples a generated document with its generation parameters.
// Created only by a successful orchestration run; immutable; replaces the
// previously current proposal.
type Proposal struct {
	Document    Document
	Depth       string
	GeneratedAt time.Time
}

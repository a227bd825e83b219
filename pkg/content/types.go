// Package content implements the markdown-aware content representation: a
// typed stream of parts with lossless parse/serialize and reference
// extraction, shared by the chunking and rendering engines.
package content

import "github.com/ternarybob/ndk/pkg/uri"

// Separator is one of the five separator hints a part may carry on either
// side. The "-force" variants mean: collapse adjacent whitespace but
// guarantee exactly the indicated break.
type Separator string

const (
	SepNone      Separator = ""
	SepNL        Separator = "\n"
	SepNLNL      Separator = "\n\n"
	SepNLForce   Separator = "\n-force"
	SepNLNLForce Separator = "\n\n-force"
)

// PartKind discriminates the five text-part variants. Dispatch on Kind, not
// on Go type assertions.
type PartKind int

const (
	PartText PartKind = iota
	PartHeading
	PartCode
	PartPageNumber
	PartLink
)

// LinkMode discriminates the four link modes a Link part may carry.
type LinkMode int

const (
	LinkCitation LinkMode = iota
	LinkEmbed
	LinkMarkdown
	LinkPlain
)

// Part is a tagged union over the five content-part variants. Fields not
// relevant to Kind are zero.
type Part struct {
	Kind PartKind
	LSep Separator
	RSep Separator

	// PartText
	Text string

	// PartHeading
	Level int
	// Heading also uses Text for its heading text.

	// PartCode
	Fence    string
	Language string
	Code     string

	// PartPageNumber
	PageNum uint32

	// PartLink
	LinkMode LinkMode
	Label    string
	Href     uri.Reference
}

// Mode selects the grammar ContentText.Parse applies to its input.
type Mode int

const (
	ModeData Mode = iota
	ModeMarkdown
)

// ContentText is an ordered sequence of parts plus an optional plain cache
// of the original text.
type ContentText struct {
	Parts []Part
	plain *string
}

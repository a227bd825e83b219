// Package ingestion implements §4.6: turning a connector- or downloader-
// supplied Fragment into a bundle.BundleBody (a single-chunk body for the
// plain mode), including blob dedup/discard/downscale and text trimming.
package ingestion

import "github.com/ternarybob/ndk/pkg/uri"

// BlobKey is the literal occurrence key a fragment's text embeds a blob
// under (e.g. a markdown image URL or a data-mode cell reference).
type BlobKey string

// DataURI is an in-memory blob as supplied by a connector or downloader,
// before any MIME validation or resizing.
type DataURI struct {
	MimeType string
	Data     []byte
}

// Mode selects which of §4.6's four ingestion paths Ingest takes.
type Mode int

const (
	ModePlain Mode = iota
	ModeSpreadsheet
	ModeData
	ModeMarkdown
)

// Fragment is the connector/downloader boundary type: raw text plus the
// blobs it references, tagged with the ingestion mode to apply.
type Fragment struct {
	Text        string
	Blobs       map[BlobKey]DataURI
	Mode        Mode
	ShouldCache bool
	// SourceIsHTML marks a markdown-mode fragment whose Text is raw HTML
	// (typically from a web connector/downloader), so Ingest normalizes it
	// to markdown before parsing.
	SourceIsHTML bool
	// BaseURL resolves relative links during HTML-to-markdown normalization.
	BaseURL string
}

// ResolveLink resolves an external reference string (as extracted from a
// fragment's text) to a resource URI, if some connector in the chain
// recognises it. Ingest takes this as a callback rather than depending on
// internal/collaborators directly, so collaborators can depend on
// ingestion's types without an import cycle.
type ResolveLink func(ref string) (uri.ResourceURI, bool)

// Package bundle defines the persisted and agent-facing forms of an
// affordance: BundleBody/BundleCollection/BundleFile/BundlePlain and their
// Observation projections.
package bundle

import (
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Section groups contiguous chunks under a heading, indexed by a path of
// two-digit components from the chunk tree root.
type Section struct {
	Indexes []int
	Heading string
}

// Chunk is one emitted body fragment.
type Chunk struct {
	URI         uri.KnowledgeURI
	Indexes     []int
	Description string
	Text        content.ContentText
}

// Media is an embedded blob referenced by at least one chunk's embed
// dependencies.
type Media struct {
	URI         uri.KnowledgeURI
	MimeType    string
	Blob        []byte
	Description string
	Placeholder string
}

// BundleBody is the persisted form of a body affordance. Tags is
// connector-supplied, free-form, and has no direct spec.md analogue;
// HasAnyTag checks it against an allowlist. The executor's assembly step
// does not filter on it.
type BundleBody struct {
	URI         uri.KnowledgeURI
	Description string
	Sections    []Section
	Chunks      []Chunk
	Media       []Media
	Tags        []string
}

// BundleCollection is the persisted form of a collection affordance.
type BundleCollection struct {
	URI     uri.KnowledgeURI
	Results []uri.ResourceURI
}

// DownloadURLKind discriminates BundleFile's download_url sum type.
type DownloadURLKind int

const (
	DownloadData DownloadURLKind = iota
	DownloadWeb
)

// DownloadURL is the sum DataUri | WebUrl.
type DownloadURL struct {
	Kind DownloadURLKind
	Data []byte
	Web  string
}

// BundleFile is the persisted form of a file affordance.
type BundleFile struct {
	URI         uri.KnowledgeURI
	MimeType    string
	Description string
	Expiry      *int64
	DownloadURL DownloadURL
}

// BundlePlain is the persisted form of a plain affordance.
type BundlePlain struct {
	URI      uri.KnowledgeURI
	MimeType string
	Text     string
}

package bundle

import (
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// ObsBodyMode discriminates the two shapes an ObsBody projection can take:
// the whole body inline as text, or a table of contents over child
// observables when the body was chunked.
type ObsBodyMode int

const (
	ObsBodyText ObsBodyMode = iota
	ObsBodyToc
)

// TocEntry is one row of an ObsBody table of contents: a pointer at a
// top-level chunk or section, with the heading an agent would use to
// decide whether to read further.
type TocEntry struct {
	URI     uri.KnowledgeURI
	Heading string
	Indexes []int
}

// ObsBody is the agent-facing projection of a BundleBody.
type ObsBody struct {
	URI         uri.KnowledgeURI
	Description string
	Mode        ObsBodyMode
	Text        content.ContentText
	Toc         []TocEntry
}

// ObsChunk is the agent-facing projection of a single Chunk.
type ObsChunk struct {
	URI         uri.KnowledgeURI
	Description string
	Indexes     []int
	Text        content.ContentText
}

// ObsMedia is the agent-facing projection of a single Media.
type ObsMedia struct {
	URI         uri.KnowledgeURI
	MimeType    string
	Blob        []byte
	Description string
	Placeholder string
}

// ProjectBody derives the ObsBody for a bundle: a single chunk with no
// sections renders as inline text; anything larger renders as a table of
// contents over its top-level sections/chunks, leaving the agent to issue
// ResourcesObserveAction for the parts it needs.
func ProjectBody(b *BundleBody) ObsBody {
	if len(b.Sections) == 0 && len(b.Chunks) == 1 {
		return ObsBody{URI: b.URI, Description: b.Description, Mode: ObsBodyText, Text: b.Chunks[0].Text}
	}

	sectionHeading := map[string]string{}
	for _, s := range b.Sections {
		sectionHeading[indexKey(s.Indexes)] = s.Heading
	}

	seenTop := map[string]bool{}
	var toc []TocEntry
	for _, c := range b.Chunks {
		if len(c.Indexes) == 0 {
			continue
		}
		top := []int{c.Indexes[0]}
		key := indexKey(top)
		if seenTop[key] {
			continue
		}
		seenTop[key] = true
		heading := sectionHeading[key]
		toc = append(toc, TocEntry{URI: c.URI, Heading: heading, Indexes: top})
	}
	return ObsBody{URI: b.URI, Description: b.Description, Mode: ObsBodyToc, Toc: toc}
}

// ProjectChunk derives the ObsChunk for a single chunk.
func ProjectChunk(c Chunk) ObsChunk {
	return ObsChunk{URI: c.URI, Description: c.Description, Indexes: c.Indexes, Text: c.Text}
}

// ProjectMedia derives the ObsMedia for a single media item.
func ProjectMedia(m Media) ObsMedia {
	return ObsMedia{URI: m.URI, MimeType: m.MimeType, Blob: m.Blob, Description: m.Description, Placeholder: m.Placeholder}
}

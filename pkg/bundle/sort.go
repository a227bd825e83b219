package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/ndk/pkg/uri"
)

// indexKey renders an index path as a radix-sortable string: each
// component zero-padded to two digits and joined with '.', so plain string
// comparison matches numeric order component-by-component.
func indexKey(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, n := range indexes {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, ".")
}

// NewBundleBody constructs a BundleBody, sorting chunks and sections by
// indexes (radix order) and restricting media to those referenced by at
// least one chunk's embed dependencies, per the §3.3 invariants.
func NewBundleBody(u uri.KnowledgeURI, description string, sections []Section, chunks []Chunk, media []Media) *BundleBody {
	sort.SliceStable(chunks, func(i, j int) bool {
		return indexKey(chunks[i].Indexes) < indexKey(chunks[j].Indexes)
	})
	sort.SliceStable(sections, func(i, j int) bool {
		return indexKey(sections[i].Indexes) < indexKey(sections[j].Indexes)
	})

	embedded := map[string]bool{}
	for _, c := range chunks {
		for _, e := range c.Text.DepEmbeds() {
			embedded[e.String()] = true
		}
	}
	var kept []Media
	for _, m := range media {
		if embedded[m.URI.String()] {
			kept = append(kept, m)
		}
	}

	return &BundleBody{URI: u, Description: description, Sections: sections, Chunks: chunks, Media: kept}
}

// HasAnyTag reports whether b carries at least one of the allowed tags. An
// empty allowlist always passes.
func (b *BundleBody) HasAnyTag(allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	have := map[string]bool{}
	for _, t := range b.Tags {
		have[t] = true
	}
	for _, t := range allow {
		if have[t] {
			return true
		}
	}
	return false
}

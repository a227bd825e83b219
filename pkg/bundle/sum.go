package bundle

import (
	"sort"

	"github.com/ternarybob/ndk/pkg/uri"
)

// Kind discriminates the four bundle variants.
type Kind int

const (
	KindBody Kind = iota
	KindCollection
	KindFile
	KindPlain
)

// Bundle is the closed sum BundleBody | BundleCollection | BundleFile |
// BundlePlain, the persisted form of one affordance. Discrimination is via
// Kind, not Go type assertions, so the capability set below dispatches by a
// single switch regardless of which variant is populated.
type Bundle struct {
	Kind       Kind
	Body       *BundleBody
	Collection *BundleCollection
	File       *BundleFile
	Plain      *BundlePlain
}

func FromBody(b *BundleBody) Bundle             { return Bundle{Kind: KindBody, Body: b} }
func FromCollection(c *BundleCollection) Bundle { return Bundle{Kind: KindCollection, Collection: c} }
func FromFile(f *BundleFile) Bundle             { return Bundle{Kind: KindFile, File: f} }
func FromPlain(p *BundlePlain) Bundle           { return Bundle{Kind: KindPlain, Plain: p} }

// URI returns the bundle's own Knowledge URI across all variants.
func (b Bundle) URI() uri.KnowledgeURI {
	switch b.Kind {
	case KindBody:
		return b.Body.URI
	case KindCollection:
		return b.Collection.URI
	case KindFile:
		return b.File.URI
	case KindPlain:
		return b.Plain.URI
	default:
		return uri.KnowledgeURI{}
	}
}

// DepLinks is the capability shared across bundle variants: the sorted set
// of non-embed link dependencies across a bundle's text-bearing parts.
func (b Bundle) DepLinks() []uri.Reference {
	var refs []uri.Reference
	if b.Kind == KindBody {
		for _, c := range b.Body.Chunks {
			refs = append(refs, c.Text.DepLinks()...)
		}
	}
	return dedupSortedRefs(refs)
}

// DepEmbeds is the embed-dependency counterpart of DepLinks.
func (b Bundle) DepEmbeds() []uri.Reference {
	var refs []uri.Reference
	if b.Kind == KindBody {
		for _, c := range b.Body.Chunks {
			refs = append(refs, c.Text.DepEmbeds()...)
		}
	}
	return dedupSortedRefs(refs)
}

func dedupSortedRefs(refs []uri.Reference) []uri.Reference {
	seen := map[string]uri.Reference{}
	for _, r := range refs {
		seen[r.String()] = r
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]uri.Reference, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out
}

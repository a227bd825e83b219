package content

import (
	"strings"

	"github.com/ternarybob/ndk/pkg/sortedlist"
	"github.com/ternarybob/ndk/pkg/uri"
)

// DepLinks returns the sorted, deduplicated set of hrefs of non-embed
// links.
func (c ContentText) DepLinks() []uri.Reference {
	return c.depsWhere(func(p Part) bool { return p.LinkMode != LinkEmbed })
}

// DepEmbeds returns the sorted, deduplicated set of hrefs of embed links.
func (c ContentText) DepEmbeds() []uri.Reference {
	return c.depsWhere(func(p Part) bool { return p.LinkMode == LinkEmbed })
}

func (c ContentText) depsWhere(keep func(Part) bool) []uri.Reference {
	list := sortedlist.New(func(r uri.Reference) string { return r.String() })
	for _, p := range c.Parts {
		if p.Kind == PartLink && keep(p) {
			list.Insert(p.Href)
		}
	}
	return list.Items()
}

// OnlyEmbed returns the sole embed href if the content is a single embed
// link (ignoring surrounding whitespace-only text parts); else false.
func (c ContentText) OnlyEmbed() (uri.Reference, bool) {
	var only *uri.Reference
	for _, p := range c.Parts {
		if p.Kind == PartText && strings.TrimSpace(p.Text) == "" {
			continue
		}
		if p.Kind == PartLink && p.LinkMode == LinkEmbed && only == nil {
			href := p.Href
			only = &href
			continue
		}
		return uri.Reference{}, false
	}
	if only != nil {
		return *only, true
	}
	return uri.Reference{}, false
}

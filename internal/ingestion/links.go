package ingestion

import (
	"sort"

	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// resolveLinks rewrites every non-embed link whose target the connector
// chain recognises into a bare-resource Knowledge reference, and returns
// one Link relation per distinct resolved target, per §4.7.
func resolveLinks(source uri.ResourceURI, text content.ContentText, resolve ResolveLink) (content.ContentText, []history.Relation) {
	if resolve == nil {
		return text, nil
	}

	parts := append([]content.Part(nil), text.Parts...)
	seen := map[string]uri.ResourceURI{}

	for i, p := range parts {
		if p.Kind != content.PartLink || p.LinkMode == content.LinkEmbed {
			continue
		}
		if p.Href.Kind != uri.ReferenceExternal {
			continue
		}
		target, ok := resolve(p.Href.String())
		if !ok {
			continue
		}
		parts[i].Href = uri.Reference{Kind: uri.ReferenceKnowledge, Knowledge: uri.KnowledgeURI{Resource: target}}
		seen[target.String()] = target
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var relations []history.Relation
	for _, k := range keys {
		relations = append(relations, history.NewRelation(history.RelationLink, "", source, seen[k]))
	}

	return content.FromParts(parts), relations
}

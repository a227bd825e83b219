package rendering

import (
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/tokens"
	"github.com/ternarybob/ndk/pkg/uri"
)

// RenderGroups packs uris greedily into batches whose total observation
// token weight does not exceed tokenBudget, then renders each batch
// independently (one Rendered per group, in input order).
func RenderGroups(uris []uri.KnowledgeURI, pool *Pool, tokenBudget int) []Rendered {
	var groups [][]uri.KnowledgeURI
	var cur []uri.KnowledgeURI
	curTokens := 0

	flush := func() {
		if len(cur) > 0 {
			groups = append(groups, cur)
			cur = nil
			curTokens = 0
		}
	}

	for _, u := range uris {
		w := observationWeight(pool, u)
		if curTokens > 0 && curTokens+w > tokenBudget {
			flush()
		}
		cur = append(cur, u)
		curTokens += w
		if w > tokenBudget {
			flush()
		}
	}
	flush()

	rendered := make([]Rendered, 0, len(groups))
	for _, g := range groups {
		rendered = append(rendered, renderGroup(g, pool))
	}
	return rendered
}

func observationWeight(pool *Pool, u uri.KnowledgeURI) int {
	obs, ok := pool.observations[u.String()]
	if !ok {
		return 0
	}
	switch obs.Kind {
	case ObservationBody:
		return tokens.Estimate(obs.Body.Text.AsStr(true))
	case ObservationChunk:
		return tokens.Estimate(obs.Chunk.Text.AsStr(true))
	default:
		return 0
	}
}

func renderGroup(uris []uri.KnowledgeURI, pool *Pool) Rendered {
	var parts []content.Part
	for _, u := range uris {
		parts = append(parts, content.Part{Kind: content.PartLink, LinkMode: content.LinkEmbed, Href: uri.Reference{Kind: uri.ReferenceKnowledge, Knowledge: u}})
	}
	return Render(content.FromParts(parts), pool)
}

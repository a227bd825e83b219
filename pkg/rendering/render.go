package rendering

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// renderState threads the "already inside a <document> wrapper" flag and
// the set of section breadcrumbs already emitted through one top-level
// Render call, so repeated chunks under the same heading don't repeat it.
type renderState struct {
	pool          *Pool
	insideDoc     bool
	seenSections  map[string]bool
	visitedEmbeds map[string]bool // guards against embed cycles
	blobs         []Blob
	embeds        []uri.KnowledgeURI
}

// Render walks text's parts, replacing every embed link whose href
// resolves in pool with the rendered form of that observation, per §4.4.
func Render(text content.ContentText, pool *Pool) Rendered {
	st := &renderState{pool: pool, seenSections: map[string]bool{}, visitedEmbeds: map[string]bool{}}
	parts := st.walk(text.Parts)
	return Rendered{Parts: parts, Blobs: st.blobs, Embeds: st.embeds}
}

func (st *renderState) walk(parts []content.Part) []content.Part {
	var out []content.Part
	for _, p := range parts {
		if p.Kind == content.PartLink && p.LinkMode == content.LinkEmbed {
			obs, ok := st.pool.lookup(p.Href)
			if !ok {
				out = append(out, p)
				continue
			}
			out = append(out, st.renderObservation(p, obs)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

func (st *renderState) renderObservation(link content.Part, obs Observation) []content.Part {
	ref, ok := link.Href.Knowledge, link.Href.Kind == uri.ReferenceKnowledge
	if !ok {
		return []content.Part{link}
	}
	key := ref.String()
	if st.visitedEmbeds[key] {
		// Cyclic embed: keep the link rather than recursing forever.
		return []content.Part{link}
	}
	st.visitedEmbeds[key] = true
	defer delete(st.visitedEmbeds, key)

	switch obs.Kind {
	case ObservationMedia:
		return st.renderMedia(ref, *obs.Media)
	case ObservationChunk:
		return st.renderChunk(ref, *obs.Chunk)
	case ObservationBody:
		return st.renderBody(ref, *obs.Body)
	default:
		return []content.Part{link}
	}
}

// blobMarker is the part left in the stream at a resolved blob's position:
// still an embed link, now pointing at a URI that Rendered.Blobs actually
// carries data for, so as_llm_inline/as_llm_split can find it in order.
func blobMarker(u uri.KnowledgeURI) content.Part {
	return content.Part{Kind: content.PartLink, LinkMode: content.LinkEmbed, LSep: content.SepNLNL, RSep: content.SepNLNL,
		Href: uri.Reference{Kind: uri.ReferenceKnowledge, Knowledge: u}}
}

func (st *renderState) renderMedia(u uri.KnowledgeURI, m bundle.ObsMedia) []content.Part {
	st.blobs = append(st.blobs, Blob{URI: u, MimeType: m.MimeType, Data: m.Blob, Description: m.Description, Placeholder: m.Placeholder})
	st.embeds = append(st.embeds, u)
	return []content.Part{blobMarker(u)}
}

func (st *renderState) renderBody(u uri.KnowledgeURI, b bundle.ObsBody) []content.Part {
	switch b.Mode {
	case bundle.ObsBodyText:
		st.embeds = append(st.embeds, u)
		return st.wrapDocument(u, func() []content.Part { return st.walk(b.Text.Parts) })
	default: // ObsBodyToc: no renderable text of its own, surface only the uri
		st.embeds = append(st.embeds, u)
		return []content.Part{{Kind: content.PartText, Text: fmt.Sprintf("[%s: table of contents, %d entries]", u.String(), len(b.Toc)), LSep: content.SepNLNL, RSep: content.SepNLNL}}
	}
}

func (st *renderState) renderChunk(u uri.KnowledgeURI, c bundle.ObsChunk) []content.Part {
	st.embeds = append(st.embeds, u)
	return st.wrapDocument(u, func() []content.Part {
		breadcrumbs := st.breadcrumbsFor(u.Resource, c.Indexes)
		body := st.walk(c.Text.Parts)
		return append(breadcrumbs, body...)
	})
}

// breadcrumbsFor returns Heading parts for every section that contains
// chunkIndexes and has not already been emitted in this render pass,
// shallowest first.
func (st *renderState) breadcrumbsFor(resource uri.ResourceURI, chunkIndexes []int) []content.Part {
	sections := st.pool.sectionsFor(resource)
	var out []content.Part
	for _, sec := range sections {
		if !isPrefix(sec.Indexes, chunkIndexes) {
			continue
		}
		key := resource.String() + "|" + indexKey(sec.Indexes)
		if st.seenSections[key] {
			continue
		}
		st.seenSections[key] = true
		out = append(out, content.Part{Kind: content.PartHeading, Level: len(sec.Indexes), Text: sec.Heading, LSep: content.SepNLNL, RSep: content.SepNLNL})
	}
	return out
}

// wrapDocument runs build (which may recursively resolve nested embeds)
// with insideDoc set, then wraps the result in <document>/</document>
// markers — unless a render already in progress is itself inside one, in
// which case no marker is added, per §4.4.
func (st *renderState) wrapDocument(u uri.KnowledgeURI, build func() []content.Part) []content.Part {
	if st.insideDoc {
		return build()
	}
	st.insideDoc = true
	inner := build()
	st.insideDoc = false

	open := content.Part{Kind: content.PartText, Text: fmt.Sprintf("<document uri=%q>", u.String()), LSep: content.SepNLNL, RSep: content.SepNLNL}
	closeTag := content.Part{Kind: content.PartText, Text: "</document>", LSep: content.SepNLNL, RSep: content.SepNLNL}
	out := make([]content.Part, 0, len(inner)+2)
	out = append(out, open)
	out = append(out, inner...)
	out = append(out, closeTag)
	return out
}

func isPrefix(prefix, full []int) bool {
	if len(prefix) == 0 || len(prefix) >= len(full) {
		return false
	}
	for i, v := range prefix {
		if full[i] != v {
			return false
		}
	}
	return true
}

func indexKey(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, n := range indexes {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, ".")
}

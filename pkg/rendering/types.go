// Package rendering implements the embed-resolution and LLM-output engine
// described in §4.4: turning a ContentText plus a pool of available
// observations into inline text, or text interleaved with media blobs.
package rendering

import (
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// ObservationKind discriminates the three observation shapes a pool entry
// may hold.
type ObservationKind int

const (
	ObservationBody ObservationKind = iota
	ObservationChunk
	ObservationMedia
)

// Observation is a tagged union over the observation projections defined
// in pkg/bundle, keyed into a Pool by their owning URI.
type Observation struct {
	Kind  ObservationKind
	Body  *bundle.ObsBody
	Chunk *bundle.ObsChunk
	Media *bundle.ObsMedia
}

func FromBody(o bundle.ObsBody) Observation  { return Observation{Kind: ObservationBody, Body: &o} }
func FromChunk(o bundle.ObsChunk) Observation { return Observation{Kind: ObservationChunk, Chunk: &o} }
func FromMedia(o bundle.ObsMedia) Observation { return Observation{Kind: ObservationMedia, Media: &o} }

// Pool is the set of observations available to render, keyed by the
// serialized observable URI, plus the section tables of contents of every
// body bundle registered in it (needed to synthesize chunk breadcrumbs).
type Pool struct {
	observations map[string]Observation
	sections     map[string][]bundle.Section // keyed by resource URI string
}

func NewPool() *Pool {
	return &Pool{observations: map[string]Observation{}, sections: map[string][]bundle.Section{}}
}

// Register adds an observation, keyed by its own URI.
func (p *Pool) Register(u uri.KnowledgeURI, obs Observation) {
	p.observations[u.String()] = obs
}

// RegisterBody additionally records a body's section table so that chunk
// breadcrumbs can be synthesized for any of its chunks later registered.
func (p *Pool) RegisterBody(u uri.KnowledgeURI, body *bundle.BundleBody) {
	p.Register(u, FromBody(bundle.ProjectBody(body)))
	p.sections[u.Resource.String()] = body.Sections
}

func (p *Pool) lookup(ref uri.Reference) (Observation, bool) {
	if ref.Kind != uri.ReferenceKnowledge {
		return Observation{}, false
	}
	obs, ok := p.observations[ref.Knowledge.String()]
	return obs, ok
}

func (p *Pool) sectionsFor(resource uri.ResourceURI) []bundle.Section {
	return p.sections[resource.String()]
}

// Blob is a rendered media block: the resolved binary form of an embed, or
// a placeholder standing in for one that could not be inlined.
type Blob struct {
	URI         uri.KnowledgeURI
	MimeType    string
	Data        []byte
	Description string
	Placeholder string
}

// Rendered is the output of render: a part stream with embeds resolved in
// place, the blobs that stream references, and the set of observable URIs
// actually embedded.
type Rendered struct {
	Parts  []content.Part
	Blobs  []Blob
	Embeds []uri.KnowledgeURI
}

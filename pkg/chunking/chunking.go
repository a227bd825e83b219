package chunking

import (
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Options carries the token-budget tunables the chunking engine needs;
// callers wire these from the shared config (§6.5's CHUNKING_THRESHOLD and
// MAX_CHUNK constants).
type Options struct {
	ChunkingThreshold int
	MaxChunk          int
}

// Chunk runs the atomize/hierarchize/optimize/emit pipeline over text and
// assembles a BundleBody for the given resource, with media filtered to
// whatever the resulting chunks actually embed.
func Chunk(resource uri.ResourceURI, description string, text content.ContentText, media []bundle.Media, opts Options) (*bundle.BundleBody, error) {
	bodyURI, err := uri.ChildObservable(resource, uri.KindBody)
	if err != nil {
		return nil, err
	}

	atoms := atomize(text.Parts)

	// Fast path: small documents round-trip as a single chunk with no
	// section structure, skipping the hierarchize/optimize machinery
	// entirely (§4.3 step 1). Embeds contribute zero tokens already, so
	// totalTokens here is exactly "estimated tokens ignoring embeds".
	if totalTokens(atoms) <= opts.ChunkingThreshold {
		chunkURI, err := uri.ChildObservable(resource, uri.KindChunk)
		if err != nil {
			return nil, err
		}
		chunk := bundle.Chunk{URI: chunkURI, Indexes: nil, Text: text}
		return bundle.NewBundleBody(bodyURI, description, nil, []bundle.Chunk{chunk}, media), nil
	}

	tree := hierarchize(atoms, opts.MaxChunk)
	opt := optimize(tree, opts.MaxChunk)
	sections, chunks, err := emit(resource, opt)
	if err != nil {
		return nil, err
	}

	return bundle.NewBundleBody(bodyURI, description, sections, chunks, media), nil
}

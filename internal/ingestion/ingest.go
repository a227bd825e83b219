package ingestion

import (
	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/chunking"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Result is everything Ingest produces for one fragment: the chunked body,
// any original-resolution files a downscaled embed left behind, and the
// relations ingestion discovered in the body's text.
type Result struct {
	Body      *bundle.BundleBody
	Files     []bundle.BundleFile
	Relations []history.Relation
}

// Ingest runs §4.6's mode-dispatched ingestion pipeline over a fragment.
func Ingest(resource uri.ResourceURI, frag Fragment, tun config.Tunables, resolve ResolveLink) (Result, error) {
	switch frag.Mode {
	case ModePlain:
		return ingestPlain(resource, frag, tun)
	case ModeSpreadsheet:
		return ingestSpreadsheet(resource, frag, tun)
	case ModeData:
		return ingestData(resource, frag, tun, resolve)
	default:
		return ingestMarkdown(resource, frag, tun, resolve)
	}
}

func ingestPlain(resource uri.ResourceURI, frag Fragment, tun config.Tunables) (Result, error) {
	text, err := shorten(frag.Text, tun.FragmentThreshold, tun.FragmentTrimmed)
	if err != nil {
		return Result{}, err
	}
	body, err := singleChunkBody(resource, text)
	if err != nil {
		return Result{}, err
	}
	return Result{Body: body}, nil
}

func ingestData(resource uri.ResourceURI, frag Fragment, tun config.Tunables, resolve ResolveLink) (Result, error) {
	text, err := shorten(frag.Text, tun.FragmentThreshold, tun.FragmentTrimmed)
	if err != nil {
		return Result{}, err
	}

	ct := content.Parse(text, content.ModeData, content.LinkPlain)
	ct, relations := resolveLinks(resource, ct, resolve)

	body, err := chunking.Chunk(resource, "", ct, nil, chunking.Options{
		ChunkingThreshold: tun.ChunkingThreshold,
		MaxChunk:          tun.MaxChunk,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Body: body, Relations: relations}, nil
}

func ingestMarkdown(resource uri.ResourceURI, frag Fragment, tun config.Tunables, resolve ResolveLink) (Result, error) {
	text := frag.Text
	if frag.SourceIsHTML {
		text = htmlToMarkdown(text, frag.BaseURL)
	}
	if !frag.ShouldCache {
		var err error
		text, err = shorten(text, tun.FragmentThreshold, tun.FragmentTrimmed)
		if err != nil {
			return Result{}, err
		}
	}

	br, err := processBlobs(resource, text, frag.Blobs, tun)
	if err != nil {
		return Result{}, err
	}

	ct := content.Parse(br.Text, content.ModeMarkdown, content.LinkMarkdown)
	ct, relations := resolveLinks(resource, ct, resolve)

	body, err := chunking.Chunk(resource, "", ct, br.Media, chunking.Options{
		ChunkingThreshold: tun.ChunkingThreshold,
		MaxChunk:          tun.MaxChunk,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Body: body, Files: br.Files, Relations: relations}, nil
}

// singleChunkBody wraps text as the single-chunk, section-free body §4.6's
// plain mode calls for, bypassing the general chunking engine entirely.
func singleChunkBody(resource uri.ResourceURI, text string) (*bundle.BundleBody, error) {
	bodyURI, err := uri.ChildObservable(resource, uri.KindBody)
	if err != nil {
		return nil, err
	}
	chunkURI, err := uri.ChildObservable(resource, uri.KindChunk, "00")
	if err != nil {
		return nil, err
	}
	return &bundle.BundleBody{
		URI: bodyURI,
		Chunks: []bundle.Chunk{
			{URI: chunkURI, Indexes: []int{0}, Text: content.FromParts([]content.Part{{Kind: content.PartText, Text: text}})},
		},
	}, nil
}

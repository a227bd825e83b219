// Package collaborators declares §6.3's injected interfaces: the contracts
// the executor drives but never implements itself. Concrete connectors
// (internal/connectors/...) and inference/downloader adapters
// (internal/collaborators/anthropic, ...) satisfy these; the core only
// depends on the interfaces here.
package collaborators

import (
	"context"

	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/internal/ingestion"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Locator is a connector-specific handle identifying how to fetch a
// resource, distinct from the resource URI (the stable identity).
type Locator struct {
	Realm string
	Value string
}

// ResolveResult is what Connector.Resolve returns for a locator: the
// metadata to fold into history, the affordances that should be treated as
// expired (and thus re-observed), and whether the resulting observations
// should be persisted to storage.
type ResolveResult struct {
	MetadataDelta map[string]string
	Expired       []uri.KnowledgeURI
	ShouldCache   bool
}

// ObservedResult is what Connector.Observe returns for one observable: one
// of a materialized bundle or a raw fragment for ingestion to process, plus
// the metadata/relations/caching side effects of the observation.
type ObservedResult struct {
	Bundle   *ObservedBundle
	Fragment *ingestion.Fragment

	MetadataDelta map[string]string
	Relations     []history.Relation
	ShouldCache   bool

	// OptionDescriptions, when non-nil, overrides the description a
	// connector would otherwise leave for dependent chunks/media.
	OptionDescriptions map[string]string
	// OptionRelationsLink/OptionRelationsParent let a connector request
	// that dependency links/children it names be recorded as Link/Parent
	// relations by the executor once the referenced resources resolve.
	OptionRelationsLink   []uri.ResourceURI
	OptionRelationsParent []uri.ResourceURI
}

// ObservedBundle is the sum of affordance bundles a connector can hand back
// already materialized, bypassing ingestion entirely (e.g. a collection
// listing, or a file affordance pointing at a download URL).
type ObservedBundle struct {
	Body       *bundle.BundleBody
	Collection *bundle.BundleCollection
	File       *bundle.BundleFile
	Plain      *bundle.BundlePlain
}

// Connector is the per-realm collaborator that knows how to turn an
// external reference into a locator, resolve a locator's current metadata,
// and observe one of its affordances.
type Connector interface {
	// Locator returns the locator a reference maps to, and false if this
	// connector doesn't recognise the reference's realm at all (the
	// executor routes to the next connector in that case).
	Locator(ctx context.Context, ref uri.Reference) (Locator, bool, error)
	Resolve(ctx context.Context, locator Locator, cached *history.MergedView) (ResolveResult, error)
	Observe(ctx context.Context, locator Locator, observable uri.KnowledgeURI, resolved ResolveResult) (ObservedResult, error)
}

// Storage is the key-value collaborator §6.3/§6.4 describe: string keys
// under fixed namespaces, YAML-serialized values. internal/history.KVStore
// is the same shape; Storage is an alias of it under a collaborator-boundary
// name. The executor itself holds an *internal/history.Store wrapping such a
// KVStore rather than a Storage value.
type Storage = history.KVStore

// Inference is the LLM collaborator used by label/field generation.
type Inference interface {
	// CompletionJSON asks for a single JSON value matching responseSchema
	// (a JSON Schema document), optionally under a system prompt, given a
	// prompt made of interleaved text and blob parts.
	CompletionJSON(ctx context.Context, system string, responseSchema []byte, prompt []PromptPart) (string, error)
	// Embedding returns a unit-length 768-dimension embedding, or nil if
	// the collaborator has no embedding capability for this content.
	Embedding(ctx context.Context, content string) ([]float32, error)
}

// PromptPartKind discriminates PromptPart's text-or-blob sum type.
type PromptPartKind int

const (
	PromptText PromptPartKind = iota
	PromptBlob
)

// PromptPart is one piece of a CompletionJSON prompt.
type PromptPart struct {
	Kind     PromptPartKind
	Text     string
	MimeType string
	Blob     []byte
}

// Downloader fetches a URL and returns a fragment with blobs, for
// connectors that hand the core a raw document to ingest rather than a
// pre-materialized bundle.
type Downloader interface {
	Download(ctx context.Context, url string) (ingestion.Fragment, error)
}

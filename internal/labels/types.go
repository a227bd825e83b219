// Package labels implements component 9: batching an action's observed
// text by token budget, asking the Inference collaborator for schema-typed
// labels/fields per batch, and folding in the deterministic xref.ExtractFromText
// cross-reference scan that needs no LLM call at all.
package labels

import "github.com/ternarybob/ndk/pkg/uri"

// Observation is one resource's text eligible for label/field generation.
type Observation struct {
	Resource uri.ResourceURI
	Text     string
}

// Result is what Generate produces for one Observation: the model's
// free-form label set, its typed field map, and the deterministically
// scanned cross-reference identifiers (§ supplemented features:
// "cross_refs" alongside model-generated labels).
type Result struct {
	Resource  uri.ResourceURI
	Labels    []string
	Fields    map[string]string
	CrossRefs []string
}

// Package history implements resource history and relation persistence
// per §3.4 and §6.4: append-only ResourceDelta records folded into a
// merged view, and the typed relation model of §4.7.
package history

import (
	"time"

	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

// RelationKind is one of the four relation variants of §4.7.
type RelationKind string

const (
	RelationEmbed  RelationKind = "embed"
	RelationLink   RelationKind = "link"
	RelationParent RelationKind = "parent"
	RelationMisc   RelationKind = "misc"
)

// Relation is a typed edge between two resources. UniqueID is stable for a
// given (Kind, Subkind, Source, Target) tuple — see NewRelation — and is
// the sort key and de-duplication key for every relation collection.
type Relation struct {
	Kind     RelationKind
	Subkind  string // only meaningful when Kind == RelationMisc
	Source   uri.ResourceURI
	Target   uri.ResourceURI
	UniqueID string
}

// ObservedDelta is the persisted form of one affordance's content as of a
// delta: exactly one of Body/Collection/File/Plain is set, selected by
// Kind. Overlays the merged view's prior record for the same Kind wholesale.
type ObservedDelta struct {
	Kind       uri.Kind
	Body       *bundle.BundleBody
	Collection *bundle.BundleCollection
	File       *bundle.BundleFile
	Plain      *bundle.BundlePlain
}

// ResourceDelta is one append-only record in a ResourceHistory, per §3.4.
type ResourceDelta struct {
	RefreshedAt   time.Time
	Locator       string // opaque, connector-owned serialized locator
	MetadataDelta map[string]string
	Aliases       []string // external aliases newly associated with this resource
	Expired       []uri.KnowledgeURI
	Observed      []ObservedDelta
	// Relations is nil when this delta does not touch the relation list,
	// and non-nil (possibly empty) when it replaces the list wholesale —
	// distinguishing "not supplied" from "supplied as empty" per §3.4.
	Relations []Relation
}

// ResourceHistory is the append-only sequence of deltas for one resource.
type ResourceHistory struct {
	Resource uri.ResourceURI
	Deltas   []ResourceDelta
}

// MergedView is the left-fold of a ResourceHistory's deltas, per §3.4.
type MergedView struct {
	Resource  uri.ResourceURI
	Locator   string
	Metadata  map[string]string
	Aliases   []string
	Observed  map[uri.Kind]ObservedDelta
	Relations []Relation
}

// Package executor implements §4.5's query executor: the pending-state
// machine that turns a list of actions into a fully resolved, observed,
// ingested Resources bundle by repeatedly batching outstanding work across
// the connector chain.
package executor

import (
	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/internal/labels"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

// LoadMode is one of §4.5's three load strengths, ordered force > auto >
// none under max_load_mode.
type LoadMode int

const (
	LoadNone LoadMode = iota
	LoadAuto
	LoadForce
)

// MaxLoadMode returns the stronger of a and b.
func MaxLoadMode(a, b LoadMode) LoadMode {
	if a > b {
		return a
	}
	return b
}

// ExpandMode selects how a load action's relations/dependencies propagate
// to related resources during expansion (§4.5 step 5). spec.md names only
// "auto" (the S7 scenario); this core additionally recognises "none" as the
// mode that performs no relation/dependency expansion at all, so a caller
// can request a single resource without pulling in its graph neighborhood.
// Open question, decided here: the value set is {ExpandNone, ExpandAuto}.
type ExpandMode int

const (
	ExpandNone ExpandMode = iota
	ExpandAuto
)

// MaxExpandMode returns the stronger of a and b.
func MaxExpandMode(a, b ExpandMode) ExpandMode {
	if a > b {
		return a
	}
	return b
}

// Observable is a resource's affordance/observable URI, the unit
// Connector.Observe and a load action's observe set both address.
type Observable = uri.KnowledgeURI

// Action is the closed sum ResourcesLoadAction | ResourcesObserveAction |
// ResourcesAttachmentAction, discriminated by Kind.
type ActionKind int

const (
	ActionLoad ActionKind = iota
	ActionObserve
	ActionAttachment
)

// AttachmentKind discriminates an attachment action's inline payload, per
// §6.2's `attachment: {type: "blob"|"plain"|"url", ...}`.
type AttachmentKind int

const (
	AttachmentBlob AttachmentKind = iota
	AttachmentPlain
	AttachmentURL
)

// Attachment is the tagged payload of a ResourcesAttachmentAction.
type Attachment struct {
	Kind     AttachmentKind
	MimeType string
	Blob     []byte
	Text     string
	URL      string
}

// Action is one entry of the list the executor consumes.
type Action struct {
	Kind ActionKind

	// ResourcesLoadAction fields.
	LoadURI        uri.ResourceURI
	ExpandDepth    int
	ExpandMode     ExpandMode
	LoadMode       LoadMode
	Observe        []Observable

	// ResourcesObserveAction field.
	ObserveURI Observable

	// ResourcesAttachmentAction fields.
	AttachmentURI         uri.ResourceURI
	AttachmentName        *string
	AttachmentDescription *string
	AttachmentPayload     Attachment
}

// ResourceError reports that a resource could not be resolved at all: no
// observation was attempted.
type ResourceError struct {
	Resource uri.ResourceURI
	Reason   string
}

// ObservationError reports that one affordance of an otherwise-resolved
// resource failed to observe or ingest; sibling affordances still proceed.
type ObservationError struct {
	Observable Observable
	Reason     string
}

// Resource is one fully realized entry of the final Resources bundle: the
// resource's resolved metadata, accumulated bundles and generated labels,
// alongside any per-affordance observation errors.
type Resource struct {
	URI               uri.ResourceURI
	Metadata          map[string]string
	Bundles           []bundle.Bundle
	ObservationErrors []ObservationError
	Labels            []labels.Result
}

// Resources is the final output of ExecuteQueryAll: every resolved
// resource (or its error), plus the relations discovered along the way and
// a read-only diagnostic stats aggregate.
type Resources struct {
	Resources []Resource
	Errors    []ResourceError
	Relations []history.Relation
	Stats     bundle.Stats
}

// pendingResult accumulates the strongest request across every action that
// reaches a given resource, plus everything resolved/observed for it so
// far.
type pendingResult struct {
	resource uri.ResourceURI

	expandDepth int
	expandMode  ExpandMode
	loadMode    LoadMode
	observe     map[string]Observable // keyed by Observable.String()

	// relationsExpandedAt is the highest expand_depth at which this
	// resource's relations/dependencies have already been expanded, or -1
	// if never. Re-expansion is skipped once reached at an equal or
	// stronger depth, which is what makes the BFS terminate on cycles
	// (§4.5 step 5, §9's "already pending and covered" check).
	relationsExpandedAt int

	locator      collaborators.Locator
	connector    collaborators.Connector
	resolved     bool
	shouldCache  bool
	unresolvable *ResourceError

	metadata map[string]string
	bundles  []bundle.Bundle
	observed map[string]bool // Observable.String() -> already observed at current strength
	obsErrs  []ObservationError

	label *labels.Result
}

// pendingState is the executor's in-memory working set for one
// ExecuteQueryAll call.
type pendingState struct {
	results     map[string]*pendingResult // keyed by ResourceURI.String()
	order       []string                  // insertion order, for deterministic iteration
	relations   []history.Relation
	unavailable []uri.Reference
}

func newPendingState() *pendingState {
	return &pendingState{results: map[string]*pendingResult{}}
}

func (ps *pendingState) get(resource uri.ResourceURI) (*pendingResult, bool) {
	r, ok := ps.results[resource.String()]
	return r, ok
}

// upsert inserts or upgrades the pending entry for resource, folding in the
// strongest request seen so far across expandDepth, loadMode, expandMode
// and the union of observe.
func (ps *pendingState) upsert(resource uri.ResourceURI, expandDepth int, expandMode ExpandMode, loadMode LoadMode, observe []Observable) *pendingResult {
	key := resource.String()
	r, ok := ps.results[key]
	if !ok {
		r = &pendingResult{
			resource:            resource,
			relationsExpandedAt: -1,
			observe:             map[string]Observable{},
			observed:            map[string]bool{},
		}
		ps.results[key] = r
		ps.order = append(ps.order, key)
	}
	if expandDepth > r.expandDepth {
		r.expandDepth = expandDepth
	}
	r.expandMode = MaxExpandMode(r.expandMode, expandMode)
	if loadMode == LoadForce && r.loadMode != LoadForce {
		// An upgrade to force re-observes what was observed at a weaker strength.
		r.observed = map[string]bool{}
	}
	r.loadMode = MaxLoadMode(r.loadMode, loadMode)
	for _, o := range observe {
		r.observe[o.String()] = o
	}
	return r
}

// missingObserve reports the observables this pending result still owes an
// observation for: in its requested observe set but not yet observed at the
// current load strength (upsert clears the observed set when an entry is
// upgraded to force, so those observables are re-observed once).
func (r *pendingResult) missingObserve() []Observable {
	var out []Observable
	for key, o := range r.observe {
		if !r.observed[key] {
			out = append(out, o)
		}
	}
	return out
}

// hasWork reports whether this pending result still needs resolution or
// has outstanding observables. A load_mode-none entry with no requested
// observables is a pure link-dependency stub (§4.5 step 5): it is never
// resolved or observed, only kept around as a relation/allowlist marker.
func (r *pendingResult) hasWork() bool {
	if r.loadMode == LoadNone && len(r.observe) == 0 {
		return false
	}
	if !r.resolved && r.unresolvable == nil {
		return true
	}
	if r.unresolvable != nil {
		return false
	}
	return len(r.missingObserve()) > 0
}

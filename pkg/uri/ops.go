package uri

import "strings"

// ResourceOf returns the Resource URI identity of a reference: identity for
// bare resource URIs, the stripped resource for affordance/observable URIs,
// and false for external URIs (undefined per §4.1).
func ResourceOf(ref Reference) (ResourceURI, bool) {
	if ref.Kind != ReferenceKnowledge {
		return ResourceURI{}, false
	}
	return ref.Knowledge.Resource, true
}

// ChildAffordance constructs the Affordance URI for kind rooted at resource,
// validating that kind may stand alone as an affordance.
func ChildAffordance(resource ResourceURI, kind Kind) (KnowledgeURI, error) {
	if kind.ObservableOnly() {
		return KnowledgeURI{}, badURI("kind %q cannot be a standalone affordance", kind)
	}
	return KnowledgeURI{Resource: resource, Suffix: &Suffix{Kind: kind}}, nil
}

// ChildObservable constructs the Observable URI for kind rooted at resource
// with the given path components, validating each component against kind's
// path form (e.g. two-digit chunk indices).
func ChildObservable(resource ResourceURI, kind Kind, path ...string) (KnowledgeURI, error) {
	suffix, err := parseSuffix(joinSuffix(kind, path))
	if err != nil {
		return KnowledgeURI{}, err
	}
	return KnowledgeURI{Resource: resource, Suffix: &suffix}, nil
}

// ChildPath appends further path components to an existing Knowledge URI's
// suffix, preserving the kind's path-form invariants.
func ChildPath(k KnowledgeURI, components ...string) (KnowledgeURI, error) {
	if k.Suffix == nil {
		return KnowledgeURI{}, badURI("cannot append path to a bare resource uri")
	}
	newPath := append(append([]string{}, k.Suffix.Path...), components...)
	suffix, err := parseSuffix(joinSuffix(k.Suffix.Kind, newPath))
	if err != nil {
		return KnowledgeURI{}, err
	}
	return KnowledgeURI{Resource: k.Resource, Suffix: &suffix}, nil
}

func joinSuffix(kind Kind, path []string) string {
	s := "$" + string(kind)
	for _, p := range path {
		s += "/" + p
	}
	return s
}

// AffordanceOf returns the Affordance URI that owns an observable suffix,
// per each kind's AffordanceRoot.
func (k KnowledgeURI) AffordanceOf() KnowledgeURI {
	if k.Suffix == nil {
		return k
	}
	root := k.Suffix.Kind.AffordanceRoot()
	return KnowledgeURI{Resource: k.Resource, Suffix: &Suffix{Kind: root}}
}

// IsChildOr reports whether parent == child, or child lies under parent's
// resource URI (and, if parent is an Affordance URI, child's owning
// affordance equals parent's), per §4.1.
func IsChildOr(child, parent Reference) bool {
	if child.Equal(parent) {
		return true
	}
	if child.Kind != ReferenceKnowledge || parent.Kind != ReferenceKnowledge {
		return false
	}
	cr, pr := child.Knowledge, parent.Knowledge

	if cr.Resource.String() != pr.Resource.String() {
		return false
	}
	if pr.Suffix == nil {
		// parent is a bare resource URI: any knowledge URI on the same
		// resource is a child.
		return true
	}
	if pr.IsAffordance() {
		if cr.Suffix == nil {
			return false
		}
		return cr.AffordanceOf().String() == pr.String()
	}
	// parent is itself an observable URI: containment is string-prefix on
	// the serialized suffix path.
	childStr, parentStr := cr.String(), pr.String()
	return strings.HasPrefix(childStr, parentStr)
}

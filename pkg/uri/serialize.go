package uri

import "strings"

// String serializes a ResourceURI to its canonical ndk:// form.
func (r ResourceURI) String() string {
	var b strings.Builder
	b.WriteString(resourceScheme)
	b.WriteString(r.Realm)
	b.WriteByte('/')
	b.WriteString(r.Subrealm)
	for _, p := range r.Path {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

// String serializes a Suffix to its "$<kind>(/<component>)*" form.
func (s Suffix) String() string {
	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(string(s.Kind))
	for _, p := range s.Path {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

// String serializes a KnowledgeURI, appending its suffix (if any).
func (k KnowledgeURI) String() string {
	s := k.Resource.String()
	if k.Suffix == nil {
		return s
	}
	return s + "/" + k.Suffix.String()
}

// String serializes an ExternalURI back to its canonical https:// form.
func (e ExternalURI) String() string {
	var b strings.Builder
	b.WriteString(e.Scheme)
	b.WriteString("://")
	b.WriteString(e.Host)
	b.WriteString(e.Path)
	if e.Query != "" {
		b.WriteByte('?')
		b.WriteString(e.Query)
	}
	if e.Frag != "" {
		b.WriteByte('#')
		b.WriteString(e.Frag)
	}
	return b.String()
}

// String serializes a Reference by dispatching on its Kind.
func (r Reference) String() string {
	switch r.Kind {
	case ReferenceKnowledge:
		return r.Knowledge.String()
	case ReferenceExternal:
		return r.External.String()
	default:
		return ""
	}
}

// Equal reports whether two Reference values denote the same identity:
// equal strings denote equal identities.
func (r Reference) Equal(other Reference) bool {
	return r.String() == other.String()
}

// Less provides the lexicographic ordering on serialized form used by
// sorted-list primitives throughout the core.
func (r Reference) Less(other Reference) bool {
	return r.String() < other.String()
}

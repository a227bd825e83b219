package uri

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

const (
	resourceScheme = "ndk://"
)

var (
	realmPattern      = regexp.MustCompile(`^[a-z][a-z0-9]+(?:-[a-z0-9]+)*$`)
	componentPattern  = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	chunkIndexPattern = regexp.MustCompile(`^[0-9]{2}$`)
	forbiddenChars    = `"*<>[\]`
)

// ParseReference parses s as either an External URI (https://...) or a
// Knowledge URI (ndk://...), dispatching on scheme.
func ParseReference(s string) (Reference, error) {
	switch {
	case strings.HasPrefix(s, resourceScheme):
		k, err := ParseKnowledgeURI(s)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceKnowledge, Knowledge: k}, nil
	case strings.HasPrefix(s, "https://"):
		e, err := ParseExternalURI(s)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: ReferenceExternal, External: e}, nil
	default:
		return Reference{}, badURI("unrecognized scheme in %q", s)
	}
}

// ParseKnowledgeURI parses a bare Resource URI, an Affordance URI or an
// Observable URI.
func ParseKnowledgeURI(s string) (KnowledgeURI, error) {
	if !strings.HasPrefix(s, resourceScheme) {
		return KnowledgeURI{}, badURI("missing ndk:// scheme in %q", s)
	}
	rest := s[len(resourceScheme):]

	var resourcePart, suffixPart string
	if idx := strings.Index(rest, "/$"); idx >= 0 {
		resourcePart = rest[:idx]
		suffixPart = rest[idx+1:] // keep leading '$'
	} else {
		resourcePart = rest
	}

	components := strings.Split(resourcePart, "/")
	if len(components) < 3 {
		return KnowledgeURI{}, badURI("resource uri requires at least 3 path-like components, got %d", len(components))
	}
	realm, subrealm, path := components[0], components[1], components[2:]

	if !realmPattern.MatchString(realm) {
		return KnowledgeURI{}, badURI("invalid realm %q", realm)
	}
	if !componentPattern.MatchString(subrealm) {
		return KnowledgeURI{}, badURI("invalid subrealm %q", subrealm)
	}
	for _, p := range path {
		if !componentPattern.MatchString(p) {
			return KnowledgeURI{}, badURI("invalid path component %q", p)
		}
	}

	resource := ResourceURI{Realm: realm, Subrealm: subrealm, Path: path}

	if suffixPart == "" {
		return KnowledgeURI{Resource: resource}, nil
	}

	suffix, err := parseSuffix(suffixPart)
	if err != nil {
		return KnowledgeURI{}, err
	}
	return KnowledgeURI{Resource: resource, Suffix: &suffix}, nil
}

func parseSuffix(s string) (Suffix, error) {
	if !strings.HasPrefix(s, "$") {
		return Suffix{}, badURI("suffix must begin with '$', got %q", s)
	}
	parts := strings.Split(s[1:], "/")
	kindStr := parts[0]
	kind, ok := parseKind(kindStr)
	if !ok {
		return Suffix{}, badURI("unknown suffix kind %q", kindStr)
	}
	path := parts[1:]
	for _, p := range path {
		if p == "" {
			return Suffix{}, badURI("empty path component in suffix %q", s)
		}
		switch kind {
		case KindChunk:
			if !chunkIndexPattern.MatchString(p) {
				return Suffix{}, badURI("chunk index %q must be two digits", p)
			}
		default:
			if !componentPattern.MatchString(p) {
				return Suffix{}, badURI("invalid suffix path component %q", p)
			}
		}
	}
	return Suffix{Kind: kind, Path: path}, nil
}

// ParseExternalURI parses and canonicalizes a restricted HTTPS URL: limited
// character class, normalized default port, sorted query parameters.
func ParseExternalURI(s string) (ExternalURI, error) {
	if strings.ContainsAny(s, forbiddenChars) {
		return ExternalURI{}, badURI("external uri contains forbidden character in %q", s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return ExternalURI{}, badURI("invalid external uri %q: %v", s, err)
	}
	if u.Scheme != "https" {
		return ExternalURI{}, badURI("external uri must use https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return ExternalURI{}, badURI("external uri missing host in %q", s)
	}

	host := u.Hostname()
	if port := u.Port(); port != "" && port != "443" {
		host = host + ":" + port
	}

	query := canonicalizeQuery(u.RawQuery)

	return ExternalURI{
		Scheme: "https",
		Host:   host,
		Path:   u.EscapedPath(),
		Query:  query,
		Frag:   u.EscapedFragment(),
	}, nil
}

// canonicalizeQuery sorts query parameters by key (stable on value order)
// so that equivalent query strings serialize identically.
func canonicalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		for j, v := range values[k] {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

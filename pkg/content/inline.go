package content

import (
	"strings"

	"github.com/ternarybob/ndk/pkg/uri"
)

// scanPlainText scans a prose run for the citation, quoted-plain, and
// bare-plain link shapes, left to right, and returns the resulting
// alternating Text/Link parts. defaultLink is the LinkMode assigned to
// quoted-plain and bare references; citations always carry LinkCitation.
func scanPlainText(raw string, defaultLink LinkMode) []Part {
	var out []Part
	for len(raw) > 0 {
		start, end, kind, ok := earliestMatch(raw)
		if !ok {
			out = appendPart(out, textPart(raw, SepNone, SepNone))
			break
		}
		if start > 0 {
			out = appendPart(out, textPart(raw[:start], SepNone, SepNone))
		}
		matchText := raw[start:end]

		var refText, label string
		switch kind {
		case matchCitation:
			sub := citationRegex.FindStringSubmatch(matchText)
			refText = sub[1]
			if len(sub) > 2 {
				label = sub[2]
			}
		case matchQuoted:
			sub := quotedRegex.FindStringSubmatch(matchText)
			refText = sub[1]
		case matchBare:
			refText = matchText
		}

		cleaned := refText
		if kind == matchBare {
			cleaned = cleanCandidate(refText, strings.HasPrefix(refText, "ndk://"))
		}

		ref, err := uri.ParseReference(cleaned)
		if err != nil {
			out = appendPart(out, textPart(matchText, SepNone, SepNone))
			raw = raw[end:]
			continue
		}

		mode := defaultLink
		if kind == matchCitation {
			mode = LinkCitation
		}
		out = appendPart(out, Part{Kind: PartLink, LinkMode: mode, Label: label, Href: ref})

		if kind == matchBare {
			raw = raw[start+len(cleaned):]
		} else {
			raw = raw[end:]
		}
	}
	return out
}

type matchKind int

const (
	matchCitation matchKind = iota
	matchQuoted
	matchBare
)

func earliestMatch(raw string) (start, end int, kind matchKind, ok bool) {
	found := false
	consider := func(loc []int, k matchKind) {
		if loc == nil {
			return
		}
		if !found || loc[0] < start {
			start, end, kind, found = loc[0], loc[1], k, true
		}
	}
	consider(citationRegex.FindStringIndex(raw), matchCitation)
	consider(quotedRegex.FindStringIndex(raw), matchQuoted)
	consider(refCandidateRegex.FindStringIndex(raw), matchBare)
	return start, end, kind, found
}

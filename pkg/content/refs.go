package content

import (
	"regexp"
	"strings"

	"github.com/ternarybob/ndk/pkg/uri"
)

// refCandidateRegex matches a bare reference run: an https:// or ndk://
// scheme followed by non-whitespace, non-delimiter characters.
var refCandidateRegex = regexp.MustCompile(`(?:https://|ndk://)[^\s"'<>\[\]]+`)

// citationRegex matches the citation link shape [^ref] or [^ref|label].
var citationRegex = regexp.MustCompile(`\[\^([^\]|]+)(?:\|([^\]]+))?\]`)

// quotedRegex matches a reference inside an attribute-like quoted context.
var quotedRegex = regexp.MustCompile(`"((?:https://|ndk://)[^"\s]+)"`)

const trimPunct = "!$&(+,.:<>?"

// cleanCandidate applies the trailing-punctuation cleaning rule: strip
// trimPunct characters, drop a trailing ')' only while it would make ')'
// count exceed '(' count, and for ndk:// URIs strip only a trailing '.'.
func cleanCandidate(s string, isNdk bool) string {
	if isNdk {
		return strings.TrimRight(s, ".")
	}
	for len(s) > 0 {
		last := s[len(s)-1]
		if last == ')' {
			if strings.Count(s, ")") > strings.Count(s, "(") {
				s = s[:len(s)-1]
				continue
			}
			break
		}
		if strings.IndexByte(trimPunct, last) >= 0 {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}

// ExtractReferences scans s with the reference regex, applies the cleaning
// rule to each match, and returns the references that parse, in order of
// appearance. Duplicates are preserved.
func ExtractReferences(s string) []uri.Reference {
	var out []uri.Reference
	for _, loc := range refCandidateRegex.FindAllStringIndex(s, -1) {
		raw := s[loc[0]:loc[1]]
		isNdk := strings.HasPrefix(raw, "ndk://")
		cleaned := cleanCandidate(raw, isNdk)
		ref, err := uri.ParseReference(cleaned)
		if err != nil {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// scanDataText extracts bare references from a non-prose input, preserving
// the rest as Text parts. Used for mode=data parsing.
func scanDataText(s string, defaultLink LinkMode) []Part {
	var out []Part
	for len(s) > 0 {
		loc := refCandidateRegex.FindStringIndex(s)
		if loc == nil {
			out = appendPart(out, textPart(s, SepNone, SepNone))
			break
		}
		if loc[0] > 0 {
			out = appendPart(out, textPart(s[:loc[0]], SepNone, SepNone))
		}
		raw := s[loc[0]:loc[1]]
		isNdk := strings.HasPrefix(raw, "ndk://")
		cleaned := cleanCandidate(raw, isNdk)
		ref, err := uri.ParseReference(cleaned)
		if err != nil {
			out = appendPart(out, textPart(raw, SepNone, SepNone))
			s = s[loc[1]:]
			continue
		}
		out = appendPart(out, Part{Kind: PartLink, LinkMode: defaultLink, Href: ref})
		s = s[loc[0]+len(cleaned):]
	}
	return out
}

func textPart(s string, lsep, rsep Separator) Part {
	return Part{Kind: PartText, Text: s, LSep: lsep, RSep: rsep}
}

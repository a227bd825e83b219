package xref

import (
	"strings"

	"github.com/ternarybob/ndk/pkg/content"
)

// ExtractFromText finds all recognised identifiers in raw text, deduped and
// normalized to uppercase. The Jira-style pattern matches uppercase keys
// only, so a lowercase "proj-123" is not reported. Uppercasing is a no-op
// for PR numbers and loses nothing for SHAs, since MatchesKind lowercases a
// git_commit value before matching.
func ExtractFromText(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, kind := range []Kind{KindJiraIssue, KindGitHubPR, KindGitCommit} {
		for _, m := range patterns[kind].FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			normalized := strings.ToUpper(m[1])
			if seen[normalized] {
				continue
			}
			seen[normalized] = true
			out = append(out, normalized)
		}
	}
	return out
}

// Extract finds all recognised identifiers in a body's rendered text, by
// running ExtractFromText over its plain string. (internal/labels calls
// ExtractFromText directly on each observation's raw text.)
func Extract(body content.ContentText) []string {
	return ExtractFromText(body.AsStr(false))
}

// MatchesKind reports whether value matches kind's pattern, case-folded for
// git_commit (whose pattern requires lowercase hex).
func MatchesKind(value string, kind Kind) bool {
	pattern, ok := patterns[kind]
	if !ok {
		return false
	}
	test := value
	if kind == KindGitCommit {
		test = strings.ToLower(value)
	}
	return pattern.MatchString(test)
}

// Package xref extracts cross-system identifiers — Jira-style issue keys,
// GitHub PR/issue numbers, short git commit SHAs — from a body's text, for
// the label-generation glue (internal/labels) to surface as a
// "cross_refs" field on the observations it produces. This is the spec's
// external-reference extraction (content.ExtractReferences) done one level
// looser: plain mentions of an identifier, not just parsed link syntax.
package xref

import "regexp"

// Kind discriminates the identifier patterns this package recognises.
type Kind string

const (
	KindJiraIssue Kind = "jira_issue"
	KindGitHubPR  Kind = "github_pr"
	KindGitCommit Kind = "git_commit"
)

// Match is one identifier found in a body, tagged with the pattern that
// matched it.
type Match struct {
	Kind  Kind
	Value string
}

var patterns = map[Kind]*regexp.Regexp{
	KindJiraIssue: regexp.MustCompile(`\b([A-Z]+-\d+)\b`),
	KindGitHubPR:  regexp.MustCompile(`\B#(\d+)\b`),
	KindGitCommit: regexp.MustCompile(`\b([a-f0-9]{7,40})\b`),
}

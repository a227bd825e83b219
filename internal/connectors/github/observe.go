package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/ingestion"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Observe fetches the observable's live content: the repo root's
// collection observable lists open issues as children; an issue's body
// observable fetches the issue plus its comment thread as one markdown
// fragment for internal/ingestion to chunk.
func (c *Connector) Observe(ctx context.Context, locator collaborators.Locator, observable uri.KnowledgeURI, resolved collaborators.ResolveResult) (collaborators.ObservedResult, error) {
	l, ok := parseLocatorValue(locator.Value)
	if !ok {
		return collaborators.ObservedResult{}, fmt.Errorf("github: malformed locator %q", locator.Value)
	}
	if observable.Suffix == nil {
		return collaborators.ObservedResult{}, fmt.Errorf("github: observable has no suffix")
	}

	switch observable.Suffix.Kind {
	case uri.KindCollection:
		return c.observeIssueList(ctx, l, observable)
	case uri.KindBody:
		return c.observeIssueBody(ctx, l)
	default:
		return collaborators.ObservedResult{}, fmt.Errorf("github: unsupported affordance kind %q", observable.Suffix.Kind)
	}
}

func (c *Connector) observeIssueList(ctx context.Context, l locatorValue, observable uri.KnowledgeURI) (collaborators.ObservedResult, error) {
	var children []uri.ResourceURI
	opts := &github.IssueListByRepoOptions{State: "open", ListOptions: github.ListOptions{PerPage: 100}}
	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, l.Owner, l.Repo, opts)
		if err != nil {
			return collaborators.ObservedResult{}, fmt.Errorf("github: list issues %s/%s: %w", l.Owner, l.Repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			child := resourceFor(locatorValue{Owner: l.Owner, Repo: l.Repo, Issue: issue.GetNumber()})
			children = append(children, child)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return collaborators.ObservedResult{
		Bundle: &collaborators.ObservedBundle{
			Collection: &bundle.BundleCollection{URI: observable, Results: children},
		},
		ShouldCache:           true,
		OptionRelationsParent: children,
	}, nil
}

func (c *Connector) observeIssueBody(ctx context.Context, l locatorValue) (collaborators.ObservedResult, error) {
	issue, _, err := c.client.Issues.Get(ctx, l.Owner, l.Repo, l.Issue)
	if err != nil {
		return collaborators.ObservedResult{}, fmt.Errorf("github: get issue %s/%s#%d: %w", l.Owner, l.Repo, l.Issue, err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "# %s\n\n%s\n", issue.GetTitle(), issue.GetBody())

	comments, _, err := c.client.Issues.ListComments(ctx, l.Owner, l.Repo, l.Issue, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return collaborators.ObservedResult{}, fmt.Errorf("github: list comments %s/%s#%d: %w", l.Owner, l.Repo, l.Issue, err)
	}
	for _, comment := range comments {
		fmt.Fprintf(&text, "\n## Comment by %s\n\n%s\n", comment.GetUser().GetLogin(), comment.GetBody())
	}

	return collaborators.ObservedResult{
		Fragment: &ingestion.Fragment{
			Text:         text.String(),
			Mode:         ingestion.ModeMarkdown,
			SourceIsHTML: false,
		},
		ShouldCache: true,
	}, nil
}

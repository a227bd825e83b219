package github

import (
	"context"
	"fmt"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Resolve fetches the repo's or issue's current metadata and decides
// whether the body affordance needs re-observing: an issue whose updated_at
// moved past the cached value is marked Expired so the executor re-observes
// its body instead of serving the cached one.
func (c *Connector) Resolve(ctx context.Context, locator collaborators.Locator, cached *history.MergedView) (collaborators.ResolveResult, error) {
	l, ok := parseLocatorValue(locator.Value)
	if !ok {
		return collaborators.ResolveResult{}, fmt.Errorf("github: malformed locator %q", locator.Value)
	}

	if l.Issue == 0 {
		return c.resolveRepo(ctx, l)
	}
	return c.resolveIssue(ctx, l, cached)
}

func (c *Connector) resolveRepo(ctx context.Context, l locatorValue) (collaborators.ResolveResult, error) {
	repo, _, err := c.client.Repositories.Get(ctx, l.Owner, l.Repo)
	if err != nil {
		return collaborators.ResolveResult{}, fmt.Errorf("github: get repo %s/%s: %w", l.Owner, l.Repo, err)
	}
	return collaborators.ResolveResult{
		MetadataDelta: map[string]string{
			"description": repo.GetDescription(),
			"updated_at":  repo.GetUpdatedAt().String(),
		},
		ShouldCache: true,
	}, nil
}

func (c *Connector) resolveIssue(ctx context.Context, l locatorValue, cached *history.MergedView) (collaborators.ResolveResult, error) {
	issue, _, err := c.client.Issues.Get(ctx, l.Owner, l.Repo, l.Issue)
	if err != nil {
		return collaborators.ResolveResult{}, fmt.Errorf("github: get issue %s/%s#%d: %w", l.Owner, l.Repo, l.Issue, err)
	}

	updatedAt := issue.GetUpdatedAt().String()
	result := collaborators.ResolveResult{
		MetadataDelta: map[string]string{
			"title":      issue.GetTitle(),
			"state":      issue.GetState(),
			"updated_at": updatedAt,
		},
		ShouldCache: true,
	}

	if cached == nil || cached.Metadata["updated_at"] != updatedAt {
		body, err := uri.ChildAffordance(resourceFor(l), uri.KindBody)
		if err != nil {
			return collaborators.ResolveResult{}, err
		}
		result.Expired = []uri.KnowledgeURI{body}
	}
	return result, nil
}

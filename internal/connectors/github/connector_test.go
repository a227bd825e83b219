package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	ghsdk "github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/pkg/uri"
)

func testConnector(t *testing.T, mux *http.ServeMux) *Connector {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := ghsdk.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return newConnectorWithClient(client)
}

func TestLocatorRecognisesGitHubRealmAndExternalURL(t *testing.T) {
	c := &Connector{}

	loc, ok, err := c.Locator(context.Background(), uri.Reference{
		Kind: uri.ReferenceKnowledge,
		Knowledge: uri.KnowledgeURI{
			Resource: uri.ResourceURI{Realm: "github", Subrealm: "ternarybob", Path: []string{"ndk", "issues", "42"}},
		},
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ternarybob/ndk/issues/42", loc.Value)

	loc, ok, err = c.Locator(context.Background(), uri.Reference{
		Kind: uri.ReferenceExternal,
		External: uri.ExternalURI{
			Scheme: "https", Host: "github.com", Path: "/ternarybob/ndk/issues/42",
		},
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ternarybob/ndk/issues/42", loc.Value)
}

func TestLocatorRoutesAwayFromUnrelatedRealms(t *testing.T) {
	c := &Connector{}
	_, ok, err := c.Locator(context.Background(), uri.Reference{
		Kind: uri.ReferenceKnowledge,
		Knowledge: uri.KnowledgeURI{
			Resource: uri.ResourceURI{Realm: "jira", Subrealm: "issue", Path: []string{"PROJ-123"}},
		},
	})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveIssueMarksBodyExpiredOnlyWhenUpdatedAtChanges(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"number":     7,
			"title":      "widgets explode",
			"state":      "open",
			"updated_at": "2026-01-01T00:00:00Z",
		})
	})
	c := testConnector(t, mux)

	result, err := c.Resolve(context.Background(), collaborators.Locator{Realm: realm, Value: "acme/widgets/issues/7"}, nil)
	require.NoError(t, err)
	require.True(t, result.ShouldCache)
	require.Len(t, result.Expired, 1)
	require.Equal(t, uri.KindBody, result.Expired[0].Suffix.Kind)

	cached := &history.MergedView{Metadata: map[string]string{"updated_at": result.MetadataDelta["updated_at"]}}
	result, err = c.Resolve(context.Background(), collaborators.Locator{Realm: realm, Value: "acme/widgets/issues/7"}, cached)
	require.NoError(t, err)
	require.Empty(t, result.Expired, "an unchanged updated_at leaves the cached body in place")
}

func TestObserveIssueBodyBuildsMarkdownFragmentWithComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"number": 7, "title": "widgets explode", "body": "they go boom",
		})
	})
	mux.HandleFunc("/repos/acme/widgets/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"body": "seen it too", "user": map[string]interface{}{"login": "alice"}},
		})
	})
	c := testConnector(t, mux)

	resource := uri.ResourceURI{Realm: realm, Subrealm: "acme", Path: []string{"widgets", "issues", "7"}}
	body, err := uri.ChildAffordance(resource, uri.KindBody)
	require.NoError(t, err)

	result, err := c.Observe(context.Background(), collaborators.Locator{Realm: realm, Value: "acme/widgets/issues/7"}, body, collaborators.ResolveResult{})
	require.NoError(t, err)
	require.NotNil(t, result.Fragment)
	require.Contains(t, result.Fragment.Text, "widgets explode")
	require.Contains(t, result.Fragment.Text, "they go boom")
	require.Contains(t, result.Fragment.Text, "seen it too")
}

func TestObserveIssueListSkipsPullRequestsAndRequestsParentRelations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"number": 1, "title": "a bug"},
			{"number": 2, "title": "a pr", "pull_request": map[string]interface{}{"url": "https://api.github.com/x"}},
		})
	})
	c := testConnector(t, mux)

	resource := uri.ResourceURI{Realm: realm, Subrealm: "acme", Path: []string{"widgets"}}
	collection, err := uri.ChildAffordance(resource, uri.KindCollection)
	require.NoError(t, err)

	result, err := c.observeIssueList(context.Background(), locatorValue{Owner: "acme", Repo: "widgets"}, collection)
	require.NoError(t, err)
	require.Len(t, result.OptionRelationsParent, 1)
	require.Equal(t, []string{"widgets", "issues", "1"}, result.OptionRelationsParent[0].Path)
}

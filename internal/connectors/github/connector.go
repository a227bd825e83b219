// Package github is a concrete collaborators.Connector for the "github"
// realm: issues and their parent repo, fetched through go-github. It is
// illustrative rather than core — a real deployment might cover pull
// requests, commits and file trees too — but it exercises the full
// Connector contract end to end (locator/resolve/observe) the way the
// executor's tests expect a realm connector to behave.
package github

import (
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/ternarybob/ndk/internal/collaborators"
)

// Connector implements collaborators.Connector against the GitHub REST API.
type Connector struct {
	client *github.Client
}

var _ collaborators.Connector = (*Connector)(nil)

// NewConnector builds a Connector authenticated with a personal access
// token. go-github's WithAuthToken attaches the bearer header directly, so
// this needs no separate OAuth2 token source.
func NewConnector(token string) (*Connector, error) {
	if token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	return &Connector{client: github.NewClient(nil).WithAuthToken(token)}, nil
}

// newConnectorWithClient is the test seam: it lets tests point the
// connector at an httptest server via client.BaseURL, the standard way to
// exercise a go-github-backed client without live network access.
func newConnectorWithClient(client *github.Client) *Connector {
	return &Connector{client: client}
}

package github

import (
	"context"
	"strconv"
	"strings"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/pkg/uri"
)

const realm = "github"

// locatorValue is the parsed form of a Locator.Value: owner/repo, optionally
// followed by an issue number.
type locatorValue struct {
	Owner string
	Repo  string
	Issue int // 0 means "the repo itself"
}

func (l locatorValue) String() string {
	if l.Issue == 0 {
		return l.Owner + "/" + l.Repo
	}
	return l.Owner + "/" + l.Repo + "/issues/" + strconv.Itoa(l.Issue)
}

func parseLocatorValue(s string) (locatorValue, bool) {
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return locatorValue{}, false
		}
		return locatorValue{Owner: parts[0], Repo: parts[1]}, true
	case 4:
		if parts[2] != "issues" {
			return locatorValue{}, false
		}
		n, err := strconv.Atoi(parts[3])
		if err != nil {
			return locatorValue{}, false
		}
		return locatorValue{Owner: parts[0], Repo: parts[1], Issue: n}, true
	default:
		return locatorValue{}, false
	}
}

// resourceFor builds the ndk:// resource URI this connector addresses a
// locator under: realm "github", subrealm the owner, path [repo] or
// [repo, "issues", n].
func resourceFor(l locatorValue) uri.ResourceURI {
	path := []string{l.Repo}
	if l.Issue != 0 {
		path = append(path, "issues", strconv.Itoa(l.Issue))
	}
	return uri.ResourceURI{Realm: realm, Subrealm: l.Owner, Path: path}
}

// Locator maps a github-realm resource reference, or an https://github.com/...
// external reference, to this connector's locator value. It routes to the
// next connector (returns false, nil error) for anything it doesn't
// recognise.
func (c *Connector) Locator(ctx context.Context, ref uri.Reference) (collaborators.Locator, bool, error) {
	switch ref.Kind {
	case uri.ReferenceKnowledge:
		res := ref.Knowledge.Resource
		if res.Realm != realm {
			return collaborators.Locator{}, false, nil
		}
		if len(res.Path) == 0 {
			return collaborators.Locator{}, false, nil
		}
		l := locatorValue{Owner: res.Subrealm, Repo: res.Path[0]}
		if len(res.Path) >= 3 && res.Path[1] == "issues" {
			n, err := strconv.Atoi(res.Path[2])
			if err != nil {
				return collaborators.Locator{}, false, nil
			}
			l.Issue = n
		}
		return collaborators.Locator{Realm: realm, Value: l.String()}, true, nil

	case uri.ReferenceExternal:
		if ref.External.Host != "github.com" {
			return collaborators.Locator{}, false, nil
		}
		l, ok := parseExternalPath(ref.External.Path)
		if !ok {
			return collaborators.Locator{}, false, nil
		}
		return collaborators.Locator{Realm: realm, Value: l.String()}, true, nil

	default:
		return collaborators.Locator{}, false, nil
	}
}

// parseExternalPath parses the path of an https://github.com/<owner>/<repo>
// or https://github.com/<owner>/<repo>/issues/<n> URL.
func parseExternalPath(path string) (locatorValue, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return locatorValue{}, false
	}
	return parseLocatorValue(trimmed)
}

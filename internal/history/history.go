package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/ndk/pkg/uri"
	"gopkg.in/yaml.v3"
)

// Store persists ResourceHistory deltas and relations, and serves merged
// views. It takes an exclusive per-URI lock while applying a delta, per
// §5, so two concurrent ingestion passes over the same resource cannot
// interleave their appends.
type Store struct {
	kv KVStore

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore wraps kv as a history Store.
func NewStore(kv KVStore) *Store {
	return &Store{kv: kv, locks: map[string]*sync.Mutex{}}
}

func (s *Store) lockFor(resource uri.ResourceURI) *sync.Mutex {
	key := resource.String()
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

// Load returns the full delta history for resource, or an empty history if
// none has been recorded yet.
func (s *Store) Load(ctx context.Context, resource uri.ResourceURI) (ResourceHistory, error) {
	raw, ok, err := s.kv.Get(ctx, resourceKey(resource))
	if err != nil {
		return ResourceHistory{}, fmt.Errorf("failed to load history for %s: %w", resource, err)
	}
	if !ok {
		return ResourceHistory{Resource: resource}, nil
	}

	var h ResourceHistory
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return ResourceHistory{}, fmt.Errorf("failed to decode history for %s: %w", resource, err)
	}
	h.Resource = resource
	return h, nil
}

// MergedView loads a resource's history and folds it.
func (s *Store) MergedView(ctx context.Context, resource uri.ResourceURI) (MergedView, error) {
	h, err := s.Load(ctx, resource)
	if err != nil {
		return MergedView{}, err
	}
	return Merge(h), nil
}

// AppendDelta appends delta to resource's history under an exclusive
// per-URI lock, persists the updated history, indexes any newly supplied
// aliases, and records any relations the delta replaces.
func (s *Store) AppendDelta(ctx context.Context, resource uri.ResourceURI, delta ResourceDelta) (MergedView, error) {
	lock := s.lockFor(resource)
	lock.Lock()
	defer lock.Unlock()

	h, err := s.Load(ctx, resource)
	if err != nil {
		return MergedView{}, err
	}
	h.Deltas = append(h.Deltas, delta)

	raw, err := yaml.Marshal(h)
	if err != nil {
		return MergedView{}, fmt.Errorf("failed to encode history for %s: %w", resource, err)
	}
	if err := s.kv.Set(ctx, resourceKey(resource), raw); err != nil {
		return MergedView{}, fmt.Errorf("failed to persist history for %s: %w", resource, err)
	}

	for _, alias := range delta.Aliases {
		if err := s.saveAlias(ctx, alias, resource); err != nil {
			return MergedView{}, err
		}
	}
	if delta.Relations != nil {
		if err := s.saveRelations(ctx, delta.Relations); err != nil {
			return MergedView{}, err
		}
	}

	return Merge(h), nil
}

// ResolveAlias looks up the resource last associated with an external
// alias string, per §6.4's hashed alias index.
func (s *Store) ResolveAlias(ctx context.Context, alias string) (uri.ResourceURI, bool, error) {
	raw, ok, err := s.kv.Get(ctx, aliasKey(alias))
	if err != nil {
		return uri.ResourceURI{}, false, fmt.Errorf("failed to resolve alias %q: %w", alias, err)
	}
	if !ok {
		return uri.ResourceURI{}, false, nil
	}
	var r uri.ResourceURI
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return uri.ResourceURI{}, false, fmt.Errorf("failed to decode alias %q: %w", alias, err)
	}
	return r, true, nil
}

func (s *Store) saveAlias(ctx context.Context, alias string, resource uri.ResourceURI) error {
	raw, err := yaml.Marshal(resource)
	if err != nil {
		return fmt.Errorf("failed to encode alias %q: %w", alias, err)
	}
	if err := s.kv.Set(ctx, aliasKey(alias), raw); err != nil {
		return fmt.Errorf("failed to persist alias %q: %w", alias, err)
	}
	return nil
}

// saveRelations persists each relation's canonical record and indexes it
// under both endpoints, so RelationsFor(node) is a single prefix scan.
func (s *Store) saveRelations(ctx context.Context, relations []Relation) error {
	for _, rel := range relations {
		raw, err := yaml.Marshal(rel)
		if err != nil {
			return fmt.Errorf("failed to encode relation %s: %w", rel.UniqueID, err)
		}
		if err := s.kv.Set(ctx, relationDefKey(rel.UniqueID), raw); err != nil {
			return fmt.Errorf("failed to persist relation %s: %w", rel.UniqueID, err)
		}
		if err := s.kv.Set(ctx, relationRefKey(rel.Source, rel.UniqueID), raw); err != nil {
			return fmt.Errorf("failed to index relation %s on source: %w", rel.UniqueID, err)
		}
		if err := s.kv.Set(ctx, relationRefKey(rel.Target, rel.UniqueID), raw); err != nil {
			return fmt.Errorf("failed to index relation %s on target: %w", rel.UniqueID, err)
		}
	}
	return nil
}

// RelationsFor returns every relation touching node, as either source or
// target, deduplicated by UniqueID.
func (s *Store) RelationsFor(ctx context.Context, node uri.ResourceURI) ([]Relation, error) {
	keys, err := s.kv.ListKeys(ctx, relationRefPrefixFor(node))
	if err != nil {
		return nil, fmt.Errorf("failed to list relations for %s: %w", node, err)
	}

	var out []Relation
	for _, key := range keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load relation at %s: %w", key, err)
		}
		if !ok {
			continue
		}
		var rel Relation
		if err := yaml.Unmarshal(raw, &rel); err != nil {
			return nil, fmt.Errorf("failed to decode relation at %s: %w", key, err)
		}
		out = append(out, rel)
	}
	return out, nil
}

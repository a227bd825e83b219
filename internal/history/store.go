package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ternarybob/ndk/pkg/uri"
)

// KVStore is the byte-valued, prefix-listable key/value store internal/history
// persists to. It generalizes the teacher's string-valued key/value storage
// interface to arbitrary YAML-serialized records and adds ListKeys, needed
// for relation reference traversal and alias lookups.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// Key namespaces per §6.4.
const (
	resourcePrefix    = "v1/resource/"
	observedPrefix    = "v1/observed/"
	aliasPrefix       = "v1/alias/"
	relationDefPrefix = "v1/relation/defs/"
	relationRefPrefix = "v1/relation/refs/"
)

// resourceKey returns the history record key for a resource:
// v1/resource/<realm>/<subrealm>/<path...>.yml
func resourceKey(r uri.ResourceURI) string {
	return resourcePrefix + pathKey(r) + ".yml"
}

// observedKey returns the single-affordance overlay key:
// v1/observed/<realm>+<subrealm>+<path>/<affordance>.yml
func observedKey(r uri.ResourceURI, kind uri.Kind) string {
	return observedPrefix + flatKey(r) + "/" + string(kind) + ".yml"
}

// observedPrefixFor lists every affordance overlay recorded for a resource.
func observedPrefixFor(r uri.ResourceURI) string {
	return observedPrefix + flatKey(r) + "/"
}

// aliasKey hashes an external alias string to its storage key:
// v1/alias/<hash>.yml
func aliasKey(alias string) string {
	h := sha256.Sum256([]byte(alias))
	return aliasPrefix + hex.EncodeToString(h[:]) + ".yml"
}

// relationDefKey stores a relation's canonical record by its UniqueID.
func relationDefKey(uniqueID string) string {
	return relationDefPrefix + uniqueID + ".yml"
}

// relationRefKey indexes a relation under one of its endpoint nodes, so
// "every relation touching node X" is a single prefix scan:
// v1/relation/refs/<node>/<unique_id>.yml
func relationRefKey(node uri.ResourceURI, uniqueID string) string {
	return relationRefPrefix + flatKey(node) + "/" + uniqueID + ".yml"
}

// relationRefPrefixFor lists every relation touching node.
func relationRefPrefixFor(node uri.ResourceURI) string {
	return relationRefPrefix + flatKey(node) + "/"
}

func pathKey(r uri.ResourceURI) string {
	parts := append([]string{r.Realm, r.Subrealm}, r.Path...)
	return strings.Join(parts, "/")
}

func flatKey(r uri.ResourceURI) string {
	parts := append([]string{r.Realm, r.Subrealm}, r.Path...)
	return strings.Join(parts, "+")
}

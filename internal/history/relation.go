package history

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ternarybob/ndk/pkg/uri"
)

// NewRelation builds a Relation with its UniqueID derived from the tuple
// that defines its identity: two relations sharing (kind, subkind, source,
// target) always collapse to the same UniqueID, so re-recording an edge on
// every ingestion pass does not grow the relation list unbounded.
func NewRelation(kind RelationKind, subkind string, source, target uri.ResourceURI) Relation {
	return Relation{
		Kind:     kind,
		Subkind:  subkind,
		Source:   source,
		Target:   target,
		UniqueID: relationUniqueID(kind, subkind, source, target),
	}
}

func relationUniqueID(kind RelationKind, subkind string, source, target uri.ResourceURI) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(subkind))
	h.Write([]byte{0})
	h.Write([]byte(source.String()))
	h.Write([]byte{0})
	h.Write([]byte(target.String()))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

package chunking

import (
	"fmt"

	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// emitter walks the optimized tree in document order, numbering children
// contiguously from zero at each level (§4.3 step 5).
type emitter struct {
	resource uri.ResourceURI
	sections []bundle.Section
	chunks   []bundle.Chunk
}

func emit(resource uri.ResourceURI, root *optimized) ([]bundle.Section, []bundle.Chunk, error) {
	e := &emitter{resource: resource}
	if err := e.walk(root, nil); err != nil {
		return nil, nil, err
	}
	return e.sections, e.chunks, nil
}

func (e *emitter) walk(n *optimized, path []int) error {
	if n.leaf {
		return e.emitChunk(path, n.atoms)
	}

	// A Section exists only where a heading introduced a group with two or
	// more surviving subgroups; a single surviving child is a structural
	// pass-through, not a boundary worth naming.
	if n.hasHeading && len(n.children) >= 2 {
		e.sections = append(e.sections, bundle.Section{Indexes: append([]int{}, path...), Heading: n.heading})
	}

	for i, child := range n.children {
		childPath := append(append([]int{}, path...), i)
		if err := e.walk(child, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitChunk(path []int, atoms []atom) error {
	indexStrs := make([]string, len(path))
	for i, n := range path {
		indexStrs[i] = fmt.Sprintf("%02d", n)
	}
	u, err := uri.ChildObservable(e.resource, uri.KindChunk, indexStrs...)
	if err != nil {
		return err
	}

	var parts []content.Part
	for _, a := range atoms {
		parts = append(parts, atomToParts(a)...)
	}

	e.chunks = append(e.chunks, bundle.Chunk{
		URI:     u,
		Indexes: append([]int{}, path...),
		Text:    content.FromParts(parts),
	})
	return nil
}

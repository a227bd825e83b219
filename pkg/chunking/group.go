package chunking

import "github.com/ternarybob/ndk/pkg/tokens"

// group is the intermediate tree built by hierarchize: a node either owns
// further groups (Groups != nil) or a flat run of atoms (Chunks != nil),
// never both.
type group struct {
	hasHeading  bool
	heading     string
	level       int
	groups      []*group
	chunks      []atom
}

func minHeadingLevel(atoms []atom) (int, bool) {
	min := 0
	found := false
	for _, a := range atoms {
		if a.kind != atomHeading {
			continue
		}
		if !found || a.level < min {
			min = a.level
			found = true
		}
	}
	return min, found
}

// hierarchize groups atoms by minimum heading level, recursing into each
// heading's body, and bin-packs headingless runs into buckets no larger
// than maxChunk (§4.3 step 3).
func hierarchize(atoms []atom, maxChunk int) *group {
	minLevel, found := minHeadingLevel(atoms)
	if !found {
		return &group{groups: binPackAtoms(atoms, maxChunk)}
	}

	var groups []*group
	var curHeading *atom
	var curBody []atom

	flush := func() {
		if curHeading == nil && len(curBody) == 0 {
			return
		}
		child := hierarchize(curBody, maxChunk)
		if curHeading != nil {
			child.hasHeading = true
			child.heading = curHeading.headingText
			child.level = curHeading.level
		}
		groups = append(groups, child)
		curHeading = nil
		curBody = nil
	}

	for i := range atoms {
		a := atoms[i]
		if a.kind == atomHeading && a.level == minLevel {
			flush()
			h := a
			curHeading = &h
			continue
		}
		curBody = append(curBody, a)
	}
	flush()

	return &group{groups: groups}
}

// binPackAtoms packs a flat, headingless atom run into contiguous buckets
// of at most maxChunk tokens, left to right. A single atom already over
// maxChunk stands alone.
func binPackAtoms(atoms []atom, maxChunk int) []*group {
	var out []*group
	var cur []atom
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, &group{chunks: cur})
		cur = nil
		curTokens = 0
	}

	for _, a := range atoms {
		if curTokens > 0 && curTokens+a.tokens > maxChunk {
			flush()
		}
		cur = append(cur, a)
		curTokens += a.tokens
		if a.tokens > maxChunk {
			flush()
		}
	}
	flush()
	return out
}

// flattenGroup linearizes a group's subtree back into an atom run. Each
// group contributes its own heading (if any) followed by its body, so
// flattening a headed group into a single chunk keeps the heading as
// content rather than dropping it.
func flattenGroup(g *group) []atom {
	var atoms []atom
	if g.hasHeading {
		atoms = append(atoms, atom{kind: atomHeading, level: g.level, headingText: g.heading, tokens: tokens.Estimate(g.heading)})
	}
	if len(g.groups) > 0 {
		for _, sub := range g.groups {
			atoms = append(atoms, flattenGroup(sub)...)
		}
		return atoms
	}
	return append(atoms, g.chunks...)
}

// groupTokens sums the token weight flattenGroup would produce for g,
// including g's own heading so the two stay consistent.
func groupTokens(g *group) int {
	total := 0
	if g.hasHeading {
		total += tokens.Estimate(g.heading)
	}
	if len(g.groups) > 0 {
		for _, sub := range g.groups {
			total += groupTokens(sub)
		}
		return total
	}
	return total + totalTokens(g.chunks)
}

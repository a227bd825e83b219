package chunking

import "github.com/ternarybob/ndk/pkg/tokens"

// optimized is the post-optimize tree: a leaf carries the final atom run
// for one chunk (already including its own heading, if any, via
// flattenGroup), an internal node carries its already-optimized children.
type optimized struct {
	hasHeading bool
	heading    string
	level      int
	leaf       bool
	atoms      []atom
	children   []*optimized
}

// optimize collapses a group that fits within maxChunk into a single leaf,
// otherwise recurses into subgroups and packs neighbouring results
// left-to-right (§4.3 step 4).
func optimize(g *group, maxChunk int) *optimized {
	if groupTokens(g) <= maxChunk {
		return &optimized{hasHeading: g.hasHeading, heading: g.heading, level: g.level, leaf: true, atoms: flattenGroup(g)}
	}

	if len(g.groups) == 0 {
		// A single headingless run over budget: nothing further to split
		// without breaking an atom apart, so it is emitted as-is.
		return &optimized{hasHeading: g.hasHeading, heading: g.heading, level: g.level, leaf: true, atoms: g.chunks}
	}

	children := make([]*optimized, 0, len(g.groups))
	for _, sub := range g.groups {
		children = append(children, optimize(sub, maxChunk))
	}
	packed := packNeighbours(children, maxChunk)
	return &optimized{hasHeading: g.hasHeading, heading: g.heading, level: g.level, leaf: false, children: packed}
}

// nodeTokens is n's total token contribution if emitted or merged as-is,
// including its own heading. A leaf's atoms already carry that weight; an
// internal node's own heading is added once here, on top of its children's
// (already self-inclusive) totals.
func nodeTokens(n *optimized) int {
	if n.leaf {
		return totalTokens(n.atoms)
	}
	total := 0
	if n.hasHeading {
		total += tokens.Estimate(n.heading)
	}
	for _, c := range n.children {
		total += nodeTokens(c)
	}
	return total
}

// collectAtoms linearizes n back into an atom run, mirroring nodeTokens'
// self-inclusive contract.
func collectAtoms(n *optimized) []atom {
	if n.leaf {
		return n.atoms
	}
	var atoms []atom
	if n.hasHeading {
		atoms = append(atoms, atom{kind: atomHeading, level: n.level, headingText: n.heading, tokens: tokens.Estimate(n.heading)})
	}
	for _, c := range n.children {
		atoms = append(atoms, collectAtoms(c)...)
	}
	return atoms
}

func mergeNodes(run []*optimized) *optimized {
	if len(run) == 1 {
		return run[0]
	}
	var atoms []atom
	for _, n := range run {
		atoms = append(atoms, collectAtoms(n)...)
	}
	return &optimized{leaf: true, atoms: atoms}
}

// packNeighbours merges consecutive small children into single chunks,
// leaving any child whose own total already exceeds maxChunk standing
// alone as a barrier (§4.3 step 4, "pack neighbours"). In practice a
// non-leaf child never passes the budget check here: optimize only
// produces a non-leaf when its own total already exceeds maxChunk, so it
// always stands alone, which is exactly the barrier behaviour wanted.
func packNeighbours(children []*optimized, maxChunk int) []*optimized {
	var out []*optimized
	var run []*optimized
	runTokens := 0

	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, mergeNodes(run))
		run = nil
		runTokens = 0
	}

	for _, c := range children {
		ct := nodeTokens(c)
		if ct > maxChunk {
			flush()
			out = append(out, c)
			continue
		}
		if runTokens > 0 && runTokens+ct > maxChunk {
			flush()
		}
		run = append(run, c)
		runTokens += ct
	}
	flush()
	return out
}

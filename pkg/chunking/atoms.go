// Package chunking implements the atomize/hierarchize/optimize/emit
// pipeline that turns a parsed ContentText into a bundle.BundleBody whose
// chunks respect a token budget.
package chunking

import (
	"strings"

	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/tokens"
)

type atomKind int

const (
	atomText atomKind = iota
	atomHeading
	atomCode
	atomPage
	atomEmbed
)

// atom is one indivisible unit produced by atomize: a code block, heading,
// page marker, or embed link stands alone; plain prose (with its attached
// non-embed links) forms its own atom per paragraph.
type atom struct {
	kind        atomKind
	parts       []content.Part
	tokens      int
	level       int
	headingText string
}

func headingAtom(p content.Part) atom {
	return atom{kind: atomHeading, level: p.Level, headingText: p.Text, tokens: tokens.Estimate(p.Text)}
}

// forcesSplit reports whether a separator hint marks a paragraph-like or
// forced break, splitting the running prose atom.
func forcesSplit(s content.Separator) bool {
	switch s {
	case content.SepNLNL, content.SepNLNLForce, content.SepNLForce:
		return true
	default:
		return false
	}
}

// atomize traverses parts per §4.3 step 2.
func atomize(parts []content.Part) []atom {
	var atoms []atom
	var cur []content.Part

	flushText := func() {
		if len(cur) == 0 {
			return
		}
		atoms = append(atoms, splitTextAtoms(cur)...)
		cur = nil
	}

	for _, p := range parts {
		switch p.Kind {
		case content.PartHeading:
			flushText()
			atoms = append(atoms, headingAtom(p))
		case content.PartCode:
			flushText()
			atoms = append(atoms, atom{kind: atomCode, parts: []content.Part{p}, tokens: tokens.Estimate(p.Code)})
		case content.PartPageNumber:
			flushText()
			atoms = append(atoms, atom{kind: atomPage, parts: []content.Part{p}})
		case content.PartLink:
			if p.LinkMode == content.LinkEmbed {
				flushText()
				atoms = append(atoms, atom{kind: atomEmbed, parts: []content.Part{p}, tokens: 0})
			} else {
				cur = append(cur, p)
			}
		default:
			cur = append(cur, p)
		}
	}
	flushText()
	return atoms
}

// splitTextAtoms splits a prose run into paragraph atoms at blank-line
// boundaries and at forced separators, discarding empty paragraphs.
func splitTextAtoms(run []content.Part) []atom {
	var atoms []atom
	var cur []content.Part

	flush := func() {
		if len(cur) == 0 {
			return
		}
		text := content.FromParts(cur).AsStr(true)
		if strings.TrimSpace(text) == "" {
			cur = nil
			return
		}
		atoms = append(atoms, atom{kind: atomText, parts: cur, tokens: tokens.Estimate(text)})
		cur = nil
	}

	for i, p := range run {
		if i > 0 && (forcesSplit(run[i-1].RSep) || forcesSplit(p.LSep)) {
			flush()
		}
		cur = append(cur, p)
	}
	flush()
	return atoms
}

func totalTokens(atoms []atom) int {
	total := 0
	for _, a := range atoms {
		total += a.tokens
	}
	return total
}

func atomToParts(a atom) []content.Part {
	if a.kind == atomHeading {
		return []content.Part{{Kind: content.PartHeading, Level: a.level, Text: a.headingText, LSep: content.SepNLNL, RSep: content.SepNLNL}}
	}
	return a.parts
}

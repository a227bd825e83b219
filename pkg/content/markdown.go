package content

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/ndk/pkg/uri"
)

// parseMarkdownParts applies the fixed markdown dialect: fenced code
// (pass-through), headings, page markers, and the six link shapes, using
// goldmark to find block boundaries and a dedicated scanner for the
// link/reference grammar goldmark doesn't know about.
func parseMarkdownParts(src []byte, defaultLink LinkMode) []Part {
	reader := text.NewReader(src)
	doc := goldmark.DefaultParser().Parse(reader)

	var parts []Part
	var pendingPage string

	flushPendingAsText := func() {
		if pendingPage != "" {
			parts = appendPart(parts, textPart(pendingPage, SepNLNL, SepNLNL))
			pendingPage = ""
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushPendingAsText()
			txt := inlineRawConcat(node, src)
			// A setext heading ("12\n---") whose text is all digits is the
			// digits+underline page-marker shape; goldmark has already
			// fused the underline into this heading node.
			if isAllDigits(txt) {
				if num, err := strconv.ParseUint(txt, 10, 32); err == nil {
					parts = appendPart(parts, Part{Kind: PartPageNumber, PageNum: uint32(num), LSep: SepNLNL, RSep: SepNLNL})
					continue
				}
			}
			parts = appendPart(parts, Part{Kind: PartHeading, Level: node.Level, Text: txt, LSep: SepNLNL, RSep: SepNLNL})

		case *ast.ThematicBreak:
			if pendingPage != "" {
				n, err := strconv.ParseUint(pendingPage, 10, 32)
				if err == nil {
					parts = appendPart(parts, Part{Kind: PartPageNumber, PageNum: uint32(n), LSep: SepNLNL, RSep: SepNLNL})
					pendingPage = ""
					continue
				}
			}
			flushPendingAsText()

		case *ast.FencedCodeBlock:
			flushPendingAsText()
			lang := string(node.Language(src))
			code := codeLines(node, src)
			parts = appendPart(parts, Part{Kind: PartCode, Fence: chooseFence(code), Language: lang, Code: code, LSep: SepNLNL, RSep: SepNLNL})

		case *ast.Paragraph, *ast.TextBlock:
			raw := inlineRawConcat(node, src)
			if isAllDigits(strings.TrimSpace(raw)) {
				flushPendingAsText()
				pendingPage = strings.TrimSpace(raw)
				continue
			}
			flushPendingAsText()
			inlineParts := scanInline(node, src, defaultLink)
			for _, ip := range inlineParts {
				parts = appendPart(parts, ip)
			}

		default:
			flushPendingAsText()
			raw := inlineRawConcat(node, src)
			if raw != "" {
				parts = appendPart(parts, textPart(raw, SepNLNL, SepNLNL))
			}
		}
	}
	flushPendingAsText()
	return parts
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func codeLines(node *ast.FencedCodeBlock, src []byte) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

// inlineRawConcat concatenates the raw source bytes spanned by a node's
// leaf text segments, used to recover literal text for headings,
// paragraphs, and inline spans whose exact markup (emphasis, etc.) is
// outside this dialect's scope.
func inlineRawConcat(n ast.Node, src []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		switch tn := node.(type) {
		case *ast.Text:
			b.Write(tn.Segment.Value(src))
			if tn.SoftLineBreak() || tn.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(tn.Value)
		case *ast.CodeSpan:
			b.WriteByte('`')
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c)
			}
			b.WriteByte('`')
		default:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// scanInline walks a paragraph/text-block's inline children, dispatching
// goldmark-recognised links and images directly and running the prose
// scanner over plain text runs and inline code.
func scanInline(n ast.Node, src []byte, defaultLink LinkMode) []Part {
	var out []Part
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch cn := c.(type) {
		case *ast.AutoLink:
			url := string(cn.URL(src))
			if ref, err := uri.ParseReference(url); err == nil {
				out = appendPart(out, Part{Kind: PartLink, LinkMode: LinkMarkdown, Href: ref})
				continue
			}
			out = appendPart(out, textPart(inlineRawConcat(cn, src), SepNone, SepNone))

		case *ast.Link:
			label := inlineRawConcat(cn, src)
			if ref, err := uri.ParseReference(string(cn.Destination)); err == nil {
				out = appendPart(out, Part{Kind: PartLink, LinkMode: LinkMarkdown, Label: label, Href: ref})
				continue
			}
			out = appendPart(out, textPart(label, SepNone, SepNone))

		case *ast.Image:
			label := inlineRawConcat(cn, src)
			if ref, err := uri.ParseReference(string(cn.Destination)); err == nil {
				out = appendPart(out, Part{Kind: PartLink, LinkMode: LinkEmbed, Label: label, Href: ref})
				continue
			}
			out = appendPart(out, textPart(label, SepNone, SepNone))

		case *ast.CodeSpan:
			raw := inlineRawConcat(cn, src)
			out = appendPart(out, textPart("`"+strings.Trim(raw, "`")+"`", SepNone, SepNone))

		case *ast.Text:
			raw := string(cn.Segment.Value(src))
			for _, p := range scanPlainText(raw, defaultLink) {
				out = appendPart(out, p)
			}
			if cn.SoftLineBreak() || cn.HardLineBreak() {
				out = appendPart(out, textPart("\n", SepNone, SepNone))
			}

		default:
			raw := inlineRawConcat(cn, src)
			for _, p := range scanPlainText(raw, defaultLink) {
				out = appendPart(out, p)
			}
		}
	}
	if len(out) > 0 {
		out[0].LSep = SepNLNL
		out[len(out)-1].RSep = SepNLNL
	}
	return out
}

package content

// Parse builds a ContentText from s according to mode. mode=data bypasses
// markdown parsing, extracting bare references and preserving the rest as
// text; mode=markdown applies the full fixed dialect. defaultLink is the
// LinkMode assigned to bare and quoted-plain references (citations and
// markdown-native links/images always carry their own unambiguous mode).
func Parse(s string, mode Mode, defaultLink LinkMode) ContentText {
	var parts []Part
	switch mode {
	case ModeData:
		parts = scanDataText(s, defaultLink)
	default:
		parts = parseMarkdownParts([]byte(s), defaultLink)
	}
	plain := s
	return ContentText{Parts: parts, plain: &plain}
}

// FromParts builds a ContentText directly from an already-assembled part
// list, without a plain cache. Used by the chunking and rendering engines
// to construct derived ContentText values.
func FromParts(parts []Part) ContentText {
	return ContentText{Parts: parts}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// entitySpans groups IOB-labelled tokens into entity spans.
func entitySpans(text string, tokens []Token) []Span {
	var spans []Span
	open := false
	var cur Span

	flush := func() {
		if open {
			cur.Text = text[cur.Start:cur.End]
			spans = append(spans, cur)
			open = false
		}
	}

	for _, t := range tokens {
		prefix, category := splitIOB(t.Label)
		if category == "" || t.Start < 0 {
			flush()
			continue
		}
		if prefix == "I" && open && cur.Category == category {
			cur.End = t.End
			continue
		}
		flush()
		cur = Span{Start: t.Start, End: t.End, Category: category}
		open = true
	}
	flush()
	return spans
}

func splitIOB(label string) (prefix, category string) {
	if label == "" || label == "O" {
		return "", ""
	}
	if len(label) > 2 && label[1] == '-' {
		return label[:1], label[2:]
	}
	return "I", label
}

// ProperNounRuns returns maximal runs of adjacent proper-noun tokens:
// tokens tagged NNP/NNPS or starting with an upper-case letter, separated
// only by whitespace.
func (d *Doc) ProperNounRuns() []Span {
	var runs []Span
	open := false
	var cur Span

	flush := func() {
		if open {
			cur.Text = d.Text[cur.Start:cur.End]
			runs = append(runs, cur)
			open = false
		}
	}

	for _, t := range d.Tokens {
		if t.Start < 0 || !isProperNoun(t) {
			flush()
			continue
		}
		if open && strings.TrimSpace(d.Text[cur.End:t.Start]) == "" {
			cur.End = t.End
			continue
		}
		flush()
		cur = Span{Start: t.Start, End: t.End}
		open = true
	}
	flush()
	return runs
}

func isProperNoun(t Token) bool {
	if t.Tag == "NNP" || t.Tag == "NNPS" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(t.Text)
	return unicode.IsUpper(r)
}

// TokensIn returns the tokens fully inside s.
func (d *Doc) TokensIn(s Span) []Token {
	var out []Token
	for _, t := range d.Tokens {
		if t.Start >= s.Start && t.End <= s.End && t.Start >= 0 {
			out = append(out, t)
		}
	}
	return out
}

// FilterSpans drops overlapping spans, preferring longer spans and, among
// equal lengths, the earlier one. The result is in document order.
func FilterSpans(spans []Span) []Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Len() != sorted[j].Len() {
			return sorted[i].Len() > sorted[j].Len()
		}
		return sorted[i].Start < sorted[j].Start
	})

	var kept []Span
	for _, s := range sorted {
		overlaps := false
		for _, k := range kept {
			if s.Start < k.End && k.Start < s.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// RuneIndex maps character (code point) offsets, as reported by external
// annotators, to byte offsets in a Go string.
type RuneIndex []int

// NewRuneIndex builds the index for text.
func NewRuneIndex(text string) RuneIndex {
	idx := make(RuneIndex, 0, len(text)+1)
	for i := range text {
		idx = append(idx, i)
	}
	return append(idx, len(text))
}

// Byte returns the byte offset of the given character offset.
func (ri RuneIndex) Byte(runeOffset int) (int, bool) {
	if runeOffset < 0 || runeOffset >= len(ri) {
		return 0, false
	}
	return ri[runeOffset], true
}

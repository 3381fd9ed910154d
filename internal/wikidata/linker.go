// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikidata

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/entitylink/internal/nlp"
	"github.com/pdiddy/entitylink/pkg/types"
)

// DefaultURLTemplate turns a QID into its Wikidata entity URI.
const DefaultURLTemplate = "https://www.wikidata.org/entity/%s"

// TypeRef formats an entity id as a namespaced type reference ("wd:Q5").
func TypeRef(qid string) string {
	return "wd:" + qid
}

// KBLinker is a pipeline stage that resolves mentions against a local
// knowledge base. Candidate mentions are the pipeline's entity spans plus
// runs of proper nouns; each, or failing that each of its token sub-runs,
// is resolved to its highest-prior alias match and overlapping matches are
// filtered longest-first.
type KBLinker struct {
	kb          *KB
	urlTemplate string
	maxDepth    int
}

// NewKBLinker creates a linker over kb. A zero MaxDepth walks one level of
// super-categories; an empty URLTemplate uses DefaultURLTemplate.
func NewKBLinker(kb *KB, cfg types.WikidataConfig) *KBLinker {
	l := &KBLinker{kb: kb, urlTemplate: cfg.URLTemplate, maxDepth: cfg.MaxDepth}
	if l.urlTemplate == "" {
		l.urlTemplate = DefaultURLTemplate
	}
	if l.maxDepth <= 0 {
		l.maxDepth = 1
	}
	return l
}

// Name returns the stage identifier.
func (l *KBLinker) Name() string { return "wikidata_kb" }

// Process replaces doc.Ents with the linked mentions in document order.
func (l *KBLinker) Process(ctx context.Context, doc *nlp.Doc) error {
	var linked []nlp.Span
	for _, cand := range mentionCandidates(doc) {
		spans, err := l.resolve(ctx, doc, cand)
		if err != nil {
			return err
		}
		linked = append(linked, spans...)
	}
	doc.Ents = nlp.FilterSpans(linked)
	return nil
}

// resolve looks the candidate up as is. When that fails it looks up every
// contiguous token sub-run, longest first, so a leading determiner or
// capitalized word does not hide a known name. Overlapping matches are
// left for FilterSpans.
func (l *KBLinker) resolve(ctx context.Context, doc *nlp.Doc, cand nlp.Span) ([]nlp.Span, error) {
	span, ok, err := l.lookup(ctx, cand)
	if err != nil {
		return nil, err
	}
	if ok {
		return []nlp.Span{span}, nil
	}

	tokens := doc.TokensIn(cand)
	var out []nlp.Span
	for n := len(tokens) - 1; n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			if isDeterminer(tokens[i]) || isDeterminer(tokens[i+n-1]) {
				continue
			}
			sub := cand
			sub.Start = tokens[i].Start
			sub.End = tokens[i+n-1].End
			sub.Text = doc.Text[sub.Start:sub.End]
			span, ok, err := l.lookup(ctx, sub)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, span)
			}
		}
	}
	return out, nil
}

func (l *KBLinker) lookup(ctx context.Context, span nlp.Span) (nlp.Span, bool, error) {
	if span.Len() <= 0 {
		return nlp.Span{}, false, nil
	}
	ent, ok, err := l.kb.Resolve(ctx, span.Text)
	if err != nil || !ok {
		return nlp.Span{}, false, err
	}
	if err := l.fill(ctx, &span, ent); err != nil {
		return nlp.Span{}, false, err
	}
	return span, true, nil
}

func (l *KBLinker) fill(ctx context.Context, span *nlp.Span, ent Entity) error {
	supers, err := l.kb.SuperEntities(ctx, ent.ID, l.maxDepth)
	if err != nil {
		return err
	}
	span.KBID = ent.QID()
	span.KBLabel = ent.Label
	span.URL = fmt.Sprintf(l.urlTemplate, ent.QID())
	span.Types = make([]string, 0, len(supers))
	for _, id := range supers {
		span.Types = append(span.Types, TypeRef(FormatQID(id)))
	}
	return nil
}

// mentionCandidates merges entity spans and proper-noun runs, dropping
// exact duplicates. Entity spans come first so their category survives.
func mentionCandidates(doc *nlp.Doc) []nlp.Span {
	type key struct{ start, end int }
	seen := make(map[key]bool)
	var out []nlp.Span
	for _, s := range append(append([]nlp.Span{}, doc.Ents...), doc.ProperNounRuns()...) {
		k := key{s.Start, s.End}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

var determiners = map[string]bool{"the": true, "a": true, "an": true}

func isDeterminer(t nlp.Token) bool {
	return t.Tag == "DT" || determiners[strings.ToLower(t.Text)]
}

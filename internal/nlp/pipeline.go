// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nlp runs the general-purpose annotation pipeline: tokenization,
// part-of-speech tagging and named-entity recognition from the pretrained
// English model bundled with prose, followed by pluggable stages such as
// an entity linker.
package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Token is one annotated token with its byte offsets into Doc.Text.
// Start and End are -1 when the token could not be located in the text.
type Token struct {
	Text  string
	Tag   string // Penn Treebank part-of-speech tag
	Label string // IOB entity label, e.g. "B-ORG"
	Start int
	End   int
}

// Span is a contiguous run of text, optionally linked to a knowledge base.
type Span struct {
	Text     string
	Start    int
	End      int
	Category string // entity category, e.g. "ORG", "PERSON"

	KBID    string   // knowledge-base identifier, e.g. "Q23548"
	KBLabel string   // canonical label in the knowledge base
	URL     string   // resolved link
	Types   []string // type identifiers, most specific first
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Doc is an annotated document. Stages read Tokens and may replace Ents.
type Doc struct {
	Text   string
	Tokens []Token
	Ents   []Span
}

// Stage is a pipeline component run after the base annotation.
type Stage interface {
	Name() string
	Process(ctx context.Context, doc *Doc) error
}

// Pipeline annotates text and then runs its stages in order.
type Pipeline struct {
	stages []Stage
}

// Load returns a pipeline backed by the pretrained English model. The
// model is bundled with the binary, so loading cannot fail today; the
// error return keeps callers ready for on-disk models.
func Load() (*Pipeline, error) {
	return &Pipeline{}, nil
}

// AddPipe appends a stage to the pipeline.
func (p *Pipeline) AddPipe(s Stage) {
	p.stages = append(p.stages, s)
}

// PipeNames lists the stage names in run order.
func (p *Pipeline) PipeNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run annotates text and passes the document through every stage.
func (p *Pipeline) Run(ctx context.Context, text string) (*Doc, error) {
	doc, err := annotate(text)
	if err != nil {
		return nil, err
	}
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Process(ctx, doc); err != nil {
			return nil, fmt.Errorf("pipeline stage %s: %w", s.Name(), err)
		}
	}
	return doc, nil
}

func annotate(text string) (*Doc, error) {
	pd, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("annotating text: %w", err)
	}

	doc := &Doc{Text: text}
	cursor := 0
	for _, tok := range pd.Tokens() {
		t := Token{Text: tok.Text, Tag: tok.Tag, Label: tok.Label, Start: -1, End: -1}
		if i := strings.Index(text[cursor:], tok.Text); i >= 0 && tok.Text != "" {
			t.Start = cursor + i
			t.End = t.Start + len(tok.Text)
			cursor = t.End
		}
		doc.Tokens = append(doc.Tokens, t)
	}
	doc.Ents = entitySpans(text, doc.Tokens)
	return doc, nil
}

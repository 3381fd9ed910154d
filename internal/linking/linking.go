// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linking runs the end-to-end flow for one document: extract the
// text, load the annotation pipeline, attach the Wikidata or DBpedia
// linking stage, run it, and collect the linked entities into three
// aligned lists.
package linking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/entitylink/internal/dbpedia"
	"github.com/pdiddy/entitylink/internal/logger"
	"github.com/pdiddy/entitylink/internal/nlp"
	"github.com/pdiddy/entitylink/internal/textextract"
	"github.com/pdiddy/entitylink/internal/wikidata"
	"github.com/pdiddy/entitylink/pkg/types"
)

// Service links entities in uploaded documents. It holds no per-request
// state; every call loads its own pipeline and knowledge-base handle.
type Service struct {
	cfg       types.Config
	client    *http.Client
	extractor textextract.Extractor
}

// NewService creates a Service that extracts with the PDF backend. A nil
// client gets one with cfg.HTTP.Timeout.
func NewService(cfg types.Config, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTP.Timeout}
	}
	return &Service{cfg: cfg, client: client, extractor: textextract.NewPDFExtractor()}
}

// WithExtractor returns a copy of s that extracts text with e.
func (s *Service) WithExtractor(e textextract.Extractor) *Service {
	c := *s
	c.extractor = e
	return &c
}

// LinkWikidata extracts the document and links its entities to Wikidata.
func (s *Service) LinkWikidata(ctx context.Context, doc io.Reader) (*types.EntityLinks, error) {
	return s.link(ctx, doc, types.TargetWikidata)
}

// LinkDBpedia extracts the document and links its entities to DBpedia.
// It fails with dbpedia.ErrMissingEndpoint before reading the document
// when no endpoint is configured.
func (s *Service) LinkDBpedia(ctx context.Context, doc io.Reader) (*types.EntityLinks, error) {
	return s.link(ctx, doc, types.TargetDBpedia)
}

func (s *Service) link(ctx context.Context, doc io.Reader, target types.Target) (*types.EntityLinks, error) {
	log := logger.Get().WithFields(logrus.Fields{"run_id": uuid.NewString(), "target": target})

	stage, closeStage, err := s.stage(target)
	if err != nil {
		return nil, err
	}
	defer closeStage()

	text, err := textextract.ExtractReader(s.extractor, doc)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	log.WithField("chars", len(text)).Debug("extracted document text")

	return s.run(ctx, log, text, target, stage)
}

// LinkText links entities in already-extracted text.
func (s *Service) LinkText(ctx context.Context, text string, target types.Target) (*types.EntityLinks, error) {
	log := logger.Get().WithFields(logrus.Fields{"run_id": uuid.NewString(), "target": target})

	stage, closeStage, err := s.stage(target)
	if err != nil {
		return nil, err
	}
	defer closeStage()

	return s.run(ctx, log, text, target, stage)
}

func (s *Service) run(ctx context.Context, log *logrus.Entry, text string, target types.Target, stage nlp.Stage) (*types.EntityLinks, error) {
	start := time.Now()

	pipeline, err := nlp.Load()
	if err != nil {
		return nil, fmt.Errorf("loading pipeline: %w", err)
	}
	pipeline.AddPipe(stage)

	doc, err := pipeline.Run(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("linking %s entities: %w", target, err)
	}

	for _, ent := range doc.Ents {
		log.WithFields(logrus.Fields{"mention": ent.Text, "kb_id": ent.KBID, "kb_label": ent.KBLabel}).Debug("linked mention")
	}
	links := Collect(doc, target)
	log.WithFields(logrus.Fields{
		"stage":    stage.Name(),
		"entities": links.Len(),
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Info("linked entities")
	return links, nil
}

// stage builds the linking stage for target and a func releasing it.
func (s *Service) stage(target types.Target) (nlp.Stage, func() error, error) {
	noop := func() error { return nil }

	switch target {
	case types.TargetWikidata:
		wcfg := s.cfg.Wikidata
		switch wcfg.Backend {
		case types.WikidataOpenTapioca:
			return wikidata.NewOpenTapiocaLinker(s.client, wcfg, s.cfg.HTTP), noop, nil
		case types.WikidataKB, "":
			kb, err := wikidata.Open(wcfg.KBPath)
			if err != nil {
				return nil, nil, fmt.Errorf("opening Wikidata knowledge base: %w", err)
			}
			return wikidata.NewKBLinker(kb, wcfg), kb.Close, nil
		default:
			return nil, nil, fmt.Errorf("unknown Wikidata backend %q", wcfg.Backend)
		}

	case types.TargetDBpedia:
		l, err := dbpedia.NewSpotlightLinker(s.client, s.cfg.DBpedia, s.cfg.HTTP)
		if err != nil {
			return nil, nil, err
		}
		return l, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown link target %q", target)
}

// Collect walks the linked entities of doc in order. The label is the
// mention text as it appears in the document; types are comma-joined, or
// "" when there are none.
func Collect(doc *nlp.Doc, target types.Target) *types.EntityLinks {
	out := &types.EntityLinks{
		Labels:    []string{},
		Links:     []string{},
		TypeLists: []string{},
		Target:    target,
	}
	for _, ent := range doc.Ents {
		out.Append(ent.Text, ent.URL, strings.Join(ent.Types, ","))
	}
	return out
}

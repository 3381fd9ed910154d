// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dbpedia links entities through a DBpedia Spotlight annotate
// service. The service address always comes from configuration.
package dbpedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/entitylink/internal/nlp"
	"github.com/pdiddy/entitylink/pkg/types"
)

// ErrMissingEndpoint is returned when no usable Spotlight endpoint is
// configured.
var ErrMissingEndpoint = errors.New("DBpedia endpoint is not configured")

// SpotlightLinker is a pipeline stage that replaces doc.Ents with the
// resources DBpedia Spotlight finds in the text.
type SpotlightLinker struct {
	client     *http.Client
	endpoint   string
	confidence float64
	support    int
	httpCfg    types.HTTPConfig
}

// NewSpotlightLinker creates the stage. It fails with ErrMissingEndpoint
// when cfg.Endpoint is empty or not an absolute URL.
func NewSpotlightLinker(client *http.Client, cfg types.DBpediaConfig, httpCfg types.HTTPConfig) (*SpotlightLinker, error) {
	if err := types.ValidateEndpoint(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingEndpoint, cfg.Endpoint)
	}
	return &SpotlightLinker{
		client:     client,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		confidence: cfg.Confidence,
		support:    cfg.Support,
		httpCfg:    httpCfg,
	}, nil
}

// Name returns the stage identifier.
func (l *SpotlightLinker) Name() string { return "dbpedia_spotlight" }

// Process annotates doc.Text remotely. Resources are kept in the order
// Spotlight returns them.
func (l *SpotlightLinker) Process(ctx context.Context, doc *nlp.Doc) error {
	if strings.TrimSpace(doc.Text) == "" {
		doc.Ents = nil
		return nil
	}

	ar, err := l.annotate(ctx, doc.Text)
	if err != nil {
		return err
	}

	ri := nlp.NewRuneIndex(doc.Text)
	ents := make([]nlp.Span, 0, len(ar.Resources))
	for _, r := range ar.Resources {
		span := nlp.Span{
			Text:     r.SurfaceForm,
			Start:    -1,
			End:      -1,
			Category: "DBPEDIA_ENT",
			KBID:     r.URI,
			URL:      r.URI,
			Types:    splitTypes(r.Types),
		}
		if off, err := strconv.Atoi(r.Offset); err == nil {
			if start, ok := ri.Byte(off); ok {
				span.Start = start
				span.End = start + len(r.SurfaceForm)
			}
		}
		ents = append(ents, span)
	}
	doc.Ents = ents
	return nil
}

func (l *SpotlightLinker) annotate(ctx context.Context, text string) (*annotateResponse, error) {
	form := url.Values{"text": {text}}
	if l.confidence > 0 {
		form.Set("confidence", strconv.FormatFloat(l.confidence, 'f', -1, 64))
	}
	if l.support > 0 {
		form.Set("support", strconv.Itoa(l.support))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/annotate", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if l.httpCfg.UserAgent != "" {
		req.Header.Set("User-Agent", l.httpCfg.UserAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DBpedia Spotlight request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("DBpedia Spotlight returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ar annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing DBpedia Spotlight response: %w", err)
	}
	return &ar, nil
}

// splitTypes splits Spotlight's comma-separated @types value. The raw
// string is preserved by joining the result with ",".
func splitTypes(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// Spotlight encodes every attribute as a string.
type annotateResponse struct {
	Text       string     `json:"@text"`
	Confidence string     `json:"@confidence"`
	Support    string     `json:"@support"`
	Resources  []resource `json:"Resources"`
}

type resource struct {
	URI                    string `json:"@URI"`
	Support                string `json:"@support"`
	Types                  string `json:"@types"`
	SurfaceForm            string `json:"@surfaceForm"`
	Offset                 string `json:"@offset"`
	SimilarityScore        string `json:"@similarityScore"`
	PercentageOfSecondRank string `json:"@percentageOfSecondRank"`
}

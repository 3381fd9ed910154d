// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/entitylink/internal/nlp"
	"github.com/pdiddy/entitylink/pkg/types"
)

// openTapiocaAPIBase is the public OpenTapioca annotate endpoint. Declared
// as a var so tests can substitute an httptest server.
var openTapiocaAPIBase = "https://opentapioca.wordlift.io/api/annotate"

// Type ids that decide a span's category, checked in this order.
var categoryTypes = []struct {
	qid      string
	category string
}{
	{"Q5", "PERSON"},
	{"Q43229", "ORG"},
	{"Q618123", "LOC"},
}

// OpenTapiocaLinker is a pipeline stage that sends the document text to an
// OpenTapioca endpoint and replaces doc.Ents with its annotations.
type OpenTapiocaLinker struct {
	client      *http.Client
	endpoint    string
	urlTemplate string
	httpCfg     types.HTTPConfig
}

// NewOpenTapiocaLinker creates the stage. An empty endpoint in cfg uses the
// public OpenTapioca service.
func NewOpenTapiocaLinker(client *http.Client, cfg types.WikidataConfig, httpCfg types.HTTPConfig) *OpenTapiocaLinker {
	l := &OpenTapiocaLinker{
		client:      client,
		endpoint:    cfg.OpenTapiocaEndpoint,
		urlTemplate: cfg.URLTemplate,
		httpCfg:     httpCfg,
	}
	if l.endpoint == "" {
		l.endpoint = openTapiocaAPIBase
	}
	if l.urlTemplate == "" {
		l.urlTemplate = DefaultURLTemplate
	}
	return l
}

// Name returns the stage identifier.
func (l *OpenTapiocaLinker) Name() string { return "opentapioca" }

// Process annotates doc.Text remotely. Annotations without a best match
// are skipped; overlapping annotations are filtered longest-first.
func (l *OpenTapiocaLinker) Process(ctx context.Context, doc *nlp.Doc) error {
	if strings.TrimSpace(doc.Text) == "" {
		doc.Ents = nil
		return nil
	}

	tr, err := l.annotate(ctx, doc.Text)
	if err != nil {
		return err
	}

	ri := nlp.NewRuneIndex(doc.Text)
	var spans []nlp.Span
	for _, a := range tr.Annotations {
		if a.BestQID == "" {
			continue
		}
		start, okStart := ri.Byte(a.Start)
		end, okEnd := ri.Byte(a.End)
		if !okStart || !okEnd || end <= start {
			return fmt.Errorf("OpenTapioca annotation %s has invalid offsets [%d, %d)", a.BestQID, a.Start, a.End)
		}

		var tag tapiocaTag
		for _, t := range a.Tags {
			if t.ID == a.BestQID {
				tag = t
				break
			}
		}

		span := nlp.Span{
			Text:     doc.Text[start:end],
			Start:    start,
			End:      end,
			Category: category(tag.Types),
			KBID:     a.BestQID,
			URL:      fmt.Sprintf(l.urlTemplate, a.BestQID),
			Types:    typeRefs(tag.Types),
		}
		spans = append(spans, span)
	}
	doc.Ents = nlp.FilterSpans(spans)
	return nil
}

func (l *OpenTapiocaLinker) annotate(ctx context.Context, text string) (*tapiocaResponse, error) {
	form := url.Values{"query": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, strings.NewReader(form.Encode()))
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
		return nil, fmt.Errorf("OpenTapioca request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("OpenTapioca returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tapiocaResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing OpenTapioca response: %w", err)
	}
	return &tr, nil
}

func category(typeFlags map[string]bool) string {
	for _, ct := range categoryTypes {
		if typeFlags[ct.qid] {
			return ct.category
		}
	}
	return "MISC"
}

// typeRefs returns the flagged type ids, sorted, as namespaced references.
func typeRefs(typeFlags map[string]bool) []string {
	var qids []string
	for qid, set := range typeFlags {
		if set {
			qids = append(qids, qid)
		}
	}
	sort.Strings(qids)
	refs := make([]string, len(qids))
	for i, q := range qids {
		refs[i] = TypeRef(q)
	}
	return refs
}

type tapiocaResponse struct {
	Text        string              `json:"text"`
	Annotations []tapiocaAnnotation `json:"annotations"`
}

type tapiocaAnnotation struct {
	Start         int          `json:"start"`
	End           int          `json:"end"`
	LogLikelihood float64      `json:"log_likelihood"`
	BestQID       string       `json:"best_qid"`
	Tags          []tapiocaTag `json:"tags"`
}

type tapiocaTag struct {
	ID             string          `json:"id"`
	Label          []string        `json:"label"`
	Description    string          `json:"desc"`
	Rank           float64         `json:"rank"`
	Score          float64         `json:"score"`
	SitelinksCount int             `json:"sitelinks"`
	Types          map[string]bool `json:"types"`
}

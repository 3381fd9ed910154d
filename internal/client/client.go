// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client calls a running entitylink service. It uploads a PDF and
// decodes the serialized lists back into types.EntityLinks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/entitylink/internal/httputil"
	"github.com/pdiddy/entitylink/pkg/types"
)

// Client talks to one entitylink service.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// UserAgent, when set, is sent with every request.
	UserAgent string
	// MaxRetries bounds the backoff attempts on HTTP 429; 0 disables retries.
	MaxRetries int
}

// New creates a client for the service at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// EntityLinksWikidata uploads the PDF at pdfPath for Wikidata linking.
func (c *Client) EntityLinksWikidata(ctx context.Context, pdfPath string) (*types.EntityLinks, error) {
	return c.entityLinks(ctx, "/entitylink-wikidata", pdfPath, types.TargetWikidata)
}

// EntityLinksDBpedia uploads the PDF at pdfPath for DBpedia linking.
func (c *Client) EntityLinksDBpedia(ctx context.Context, pdfPath string) (*types.EntityLinks, error) {
	return c.entityLinks(ctx, "/entitylink-dbpedia", pdfPath, types.TargetDBpedia)
}

func (c *Client) entityLinks(ctx context.Context, path, pdfPath string, target types.Target) (*types.EntityLinks, error) {
	body, contentType, err := multipartBody(pdfPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("entitylink request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("entitylink %s returned HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var s types.SerializedLinks
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing entitylink response: %w", err)
	}
	links, err := s.Deserialize(target)
	if err != nil {
		return nil, fmt.Errorf("decoding entitylink response: %w", err)
	}
	return links, nil
}

// multipartBody reads the file into a "file" form field. The body is kept
// in memory so a rate-limited request can be replayed.
func multipartBody(pdfPath string) ([]byte, string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", pdfPath, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

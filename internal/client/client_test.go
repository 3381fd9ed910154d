// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/entitylink/internal/httputil"
	"github.com/pdiddy/entitylink/internal/testutil"
	"github.com/pdiddy/entitylink/pkg/types"
)

func writePDF(t *testing.T) (string, []byte) {
	t.Helper()
	data := testutil.PDF("NASA launched a rocket.")
	path := filepath.Join(t.TempDir(), "nasa.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func TestEntityLinksRoundTrip(t *testing.T) {
	path, data := writePDF(t)

	var gotPaths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "nasa.pdf", header.Filename)
		upload, _ := io.ReadAll(file)
		assert.Equal(t, data, upload)

		json.NewEncoder(w).Encode(types.SerializedLinks{
			Labels:    `["NASA"]`,
			Links:     `["https://www.wikidata.org/entity/Q23548"]`,
			TypeLists: `["wd:Q2369127,wd:Q327333"]`,
		})
	}))
	defer ts.Close()

	c := New(ts.URL+"/", ts.Client())

	wd, err := c.EntityLinksWikidata(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, types.TargetWikidata, wd.Target)
	assert.Equal(t, []string{"NASA"}, wd.Labels)
	assert.Equal(t, []string{"wd:Q2369127,wd:Q327333"}, wd.TypeLists)

	db, err := c.EntityLinksDBpedia(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, types.TargetDBpedia, db.Target)

	assert.Equal(t, []string{"/entitylink-wikidata", "/entitylink-dbpedia"}, gotPaths)
}

func TestEntityLinksErrors(t *testing.T) {
	path, _ := writePDF(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "DBpedia endpoint is not configured", http.StatusInternalServerError)
			},
			want: "HTTP 500: DBpedia endpoint is not configured",
		},
		{
			name: "misaligned lists",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"labels":"[\"a\"]","links":"[]","type_lists":"[]"}`))
			},
			want: "decoding entitylink response",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
			want: "parsing entitylink response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()
			_, err := New(ts.URL, ts.Client()).EntityLinksDBpedia(context.Background(), path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestEntityLinksMissingFile(t *testing.T) {
	_, err := New("http://127.0.0.1:1", nil).EntityLinksWikidata(context.Background(), filepath.Join(t.TempDir(), "none.pdf"))
	assert.ErrorContains(t, err, "opening")
}

func TestEntityLinksRetriesRateLimit(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	path, data := writePDF(t)
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		upload, _ := io.ReadAll(file)
		assert.Equal(t, data, upload, "replayed body is complete")
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"labels":"[]","links":"[]","type_lists":"[]"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client())
	c.UserAgent = "entitylink-test"
	c.MaxRetries = 2
	links, err := c.EntityLinksWikidata(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, links.Len())
	assert.Equal(t, 2, calls)
}

func TestEntityLinksNoRetryByDefault(t *testing.T) {
	path, _ := writePDF(t)
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := New(ts.URL, ts.Client()).EntityLinksDBpedia(context.Background(), path)
	assert.ErrorContains(t, err, "HTTP 429")
	assert.Equal(t, 1, calls)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityLinksSerializeRoundTrip(t *testing.T) {
	links := &EntityLinks{}
	links.Append("NASA", "https://www.wikidata.org/entity/Q23548", "wd:Q327333,wd:Q7278")
	links.Append(`Chris "Commander" Hadfield`, "https://www.wikidata.org/entity/Q439737", "")
	links.Append("ISS", "https://www.wikidata.org/entity/Q25271", "wd:Q1418")

	s, err := links.Serialize()
	require.NoError(t, err)

	for name, field := range map[string]string{"labels": s.Labels, "links": s.Links, "type_lists": s.TypeLists} {
		var arr []string
		require.NoErrorf(t, json.Unmarshal([]byte(field), &arr), "%s is not a JSON array", name)
		assert.Len(t, arr, 3, name)
	}

	got, err := s.Deserialize(TargetWikidata)
	require.NoError(t, err)
	assert.Equal(t, links.Labels, got.Labels)
	assert.Equal(t, links.Links, got.Links)
	assert.Equal(t, links.TypeLists, got.TypeLists)
	assert.Equal(t, TargetWikidata, got.Target)
}

func TestEntityLinksSerializeEmpty(t *testing.T) {
	s, err := (&EntityLinks{}).Serialize()
	require.NoError(t, err)
	assert.Equal(t, SerializedLinks{Labels: "[]", Links: "[]", TypeLists: "[]"}, s)

	got, err := s.Deserialize(TargetDBpedia)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSerializedLinksWireNames(t *testing.T) {
	data, err := json.Marshal(SerializedLinks{Labels: "[]", Links: "[]", TypeLists: "[]"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":"[]","links":"[]","type_lists":"[]"}`, string(data))
}

func TestDeserializeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   SerializedLinks
	}{
		{"labels not an array", SerializedLinks{Labels: `"NASA"`, Links: "[]", TypeLists: "[]"}},
		{"links malformed", SerializedLinks{Labels: "[]", Links: "[", TypeLists: "[]"}},
		{"misaligned", SerializedLinks{Labels: `["a","b"]`, Links: `["x"]`, TypeLists: `["",""]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Deserialize(TargetWikidata)
			assert.Error(t, err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{Port: 8080},
		Wikidata: WikidataConfig{Backend: WikidataKB, URLTemplate: "https://www.wikidata.org/entity/%s", MaxDepth: 1},
		DBpedia:  DBpediaConfig{Endpoint: "http://localhost:2222/rest", Confidence: 0.5},
	}
	require.NoError(t, valid.Validate())

	noEndpoint := valid
	noEndpoint.DBpedia.Endpoint = ""
	assert.NoError(t, noEndpoint.Validate(), "DBpedia endpoint is optional at load time")

	badEndpoint := valid
	badEndpoint.DBpedia.Endpoint = "not a url"
	assert.Error(t, badEndpoint.Validate())

	badBackend := valid
	badBackend.Wikidata.Backend = "freebase"
	assert.Error(t, badBackend.Validate())

	badTemplate := valid
	badTemplate.Wikidata.URLTemplate = "https://www.wikidata.org/entity/"
	assert.Error(t, badTemplate.Validate())
}

func TestValidateEndpoint(t *testing.T) {
	assert.NoError(t, ValidateEndpoint("https://api.dbpedia-spotlight.org/en"))
	assert.Error(t, ValidateEndpoint(""))
	assert.Error(t, ValidateEndpoint("localhost"))
}

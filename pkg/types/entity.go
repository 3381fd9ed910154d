// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model and configuration shared by the
// entitylink packages and its HTTP wire format.
package types

import (
	"encoding/json"
	"fmt"
)

// Target names the knowledge base an EntityLinks result was resolved against.
type Target string

const (
	TargetWikidata Target = "Wikidata"
	TargetDBpedia  Target = "DBpedia"
)

// EntityLinks holds the linked entities of one document as three
// index-aligned lists: entry i of each list describes the i-th linked
// entity in the order the pipeline produced them.
type EntityLinks struct {
	// Labels holds the display label of each entity.
	Labels []string `json:"labels" yaml:"labels"`

	// Links holds the resolved URL or identifier of each entity.
	Links []string `json:"links" yaml:"links"`

	// TypeLists holds the comma-joined type identifiers of each entity,
	// or "" when the entity has none.
	TypeLists []string `json:"type_lists" yaml:"type_lists"`

	// Target is the knowledge base the links point into.
	Target Target `json:"target,omitempty" yaml:"target,omitempty"`
}

// Append adds one entity to all three lists.
func (e *EntityLinks) Append(label, link, typeList string) {
	e.Labels = append(e.Labels, label)
	e.Links = append(e.Links, link)
	e.TypeLists = append(e.TypeLists, typeList)
}

// Len returns the number of entities.
func (e *EntityLinks) Len() int {
	return len(e.Labels)
}

// SerializedLinks is the wire form of EntityLinks: each list is encoded
// independently as a JSON array inside a string.
type SerializedLinks struct {
	Labels    string `json:"labels"`
	Links     string `json:"links"`
	TypeLists string `json:"type_lists"`
}

// Serialize encodes each list as its own JSON array string. Nil lists
// encode as "[]".
func (e *EntityLinks) Serialize() (SerializedLinks, error) {
	labels, err := encodeList(e.Labels)
	if err != nil {
		return SerializedLinks{}, fmt.Errorf("encoding labels: %w", err)
	}
	links, err := encodeList(e.Links)
	if err != nil {
		return SerializedLinks{}, fmt.Errorf("encoding links: %w", err)
	}
	typeLists, err := encodeList(e.TypeLists)
	if err != nil {
		return SerializedLinks{}, fmt.Errorf("encoding type lists: %w", err)
	}
	return SerializedLinks{Labels: labels, Links: links, TypeLists: typeLists}, nil
}

// Deserialize decodes the three JSON array strings back into an
// EntityLinks. It fails when a field is not a JSON array of strings or
// when the lists differ in length.
func (s SerializedLinks) Deserialize(target Target) (*EntityLinks, error) {
	var out EntityLinks
	if err := json.Unmarshal([]byte(s.Labels), &out.Labels); err != nil {
		return nil, fmt.Errorf("decoding labels: %w", err)
	}
	if err := json.Unmarshal([]byte(s.Links), &out.Links); err != nil {
		return nil, fmt.Errorf("decoding links: %w", err)
	}
	if err := json.Unmarshal([]byte(s.TypeLists), &out.TypeLists); err != nil {
		return nil, fmt.Errorf("decoding type lists: %w", err)
	}
	if len(out.Labels) != len(out.Links) || len(out.Labels) != len(out.TypeLists) {
		return nil, fmt.Errorf("misaligned lists: %d labels, %d links, %d type lists",
			len(out.Labels), len(out.Links), len(out.TypeLists))
	}
	out.Target = target
	return &out, nil
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

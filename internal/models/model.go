// Package models defines the data types of the model parser: versioned
// models, their elements and relationships, and query/traversal results.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
)

// Model is one decoded version of a saved model. It is immutable once
// decoded and is shared read-only between concurrent requests.
type Model struct {
	SchemaVersion string         `json:"schemaVersion"`
	ModelID       string         `json:"modelId"`
	SiteModelID   string         `json:"siteModelId"`
	Version       int            `json:"version"`
	Elements      []Element      `json:"elements"`
	Relationships []Relationship `json:"relationships"`

	indexOnce   sync.Once
	elementIdx  map[string]int
	relationIdx map[string]int
}

// modelWire is the stored JSON shape. "cubsObjects" is the legacy name of "elements".
type modelWire struct {
	SchemaVersion string          `json:"schemaVersion"`
	ModelID       string          `json:"modelId"`
	SiteModelID   string          `json:"siteModelId"`
	Version       json.RawMessage `json:"version"`
	Elements      []Element       `json:"elements"`
	CubsObjects   []Element       `json:"cubsObjects"`
	Relationships []Relationship  `json:"relationships"`
}

// UnmarshalJSON decodes the stored model shape, accepting "cubsObjects" as an
// alias of "elements" and treating null collections as empty.
func (m *Model) UnmarshalJSON(data []byte) error {
	var w modelWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	version, err := decodeVersion(w.Version)
	if err != nil {
		return err
	}

	elements := w.Elements
	if elements == nil {
		elements = w.CubsObjects
	}

	if elements == nil {
		elements = []Element{}
	}

	relationships := w.Relationships
	if relationships == nil {
		relationships = []Relationship{}
	}

	m.SchemaVersion = w.SchemaVersion
	m.ModelID = w.ModelID
	m.SiteModelID = w.SiteModelID
	m.Version = version
	m.Elements = elements
	m.Relationships = relationships

	return nil
}

// decodeVersion accepts the version as an integer, an integral float such as
// 2.0, or a numeric string.
func decodeVersion(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}

	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, nil
	}

	f, err := n.Float64()
	if err != nil {
		return 0, err
	}

	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("version %s is not an integer", n)
	}

	return int(f), nil
}

// ModelEnvelope is the API response wrapper some exports are saved in.
type ModelEnvelope struct {
	Data *Model `json:"data"`
}

func (m *Model) buildIndex() {
	m.indexOnce.Do(func() {
		m.elementIdx = make(map[string]int, len(m.Elements))
		for i := range m.Elements {
			if _, dup := m.elementIdx[m.Elements[i].ID]; !dup {
				m.elementIdx[m.Elements[i].ID] = i
			}
		}

		m.relationIdx = make(map[string]int, len(m.Relationships))
		for i := range m.Relationships {
			if _, dup := m.relationIdx[m.Relationships[i].ID]; !dup {
				m.relationIdx[m.Relationships[i].ID] = i
			}
		}
	})
}

// ElementByID returns the first element with the given id.
func (m *Model) ElementByID(id string) (*Element, bool) {
	m.buildIndex()

	i, ok := m.elementIdx[id]
	if !ok {
		return nil, false
	}

	return &m.Elements[i], true
}

// RelationshipByID returns the first relationship with the given id.
func (m *Model) RelationshipByID(id string) (*Relationship, bool) {
	m.buildIndex()

	i, ok := m.relationIdx[id]
	if !ok {
		return nil, false
	}

	return &m.Relationships[i], true
}

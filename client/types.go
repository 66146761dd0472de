package client

import (
	"encoding/json"
	"strings"
)

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ModelStats summarizes one model version. ConnectedRelationships is nil
// until the server has built the relationship graph of that version.
type ModelStats struct {
	ModelID                string         `json:"model_id"`
	Version                int            `json:"version"`
	ElementsCount          int            `json:"elements_count"`
	RelationshipsCount     int            `json:"relationships_count"`
	CountsByType           map[string]int `json:"counts_by_type"`
	CountsByNature         map[string]int `json:"counts_by_nature"`
	RelationshipsByType    map[string]int `json:"relationships_by_type"`
	RelationshipsByNature  map[string]int `json:"relationships_by_nature"`
	ConnectedRelationships *int           `json:"connected_relationships_count,omitempty"`
	ModelVersions          []int          `json:"model_versions"`
}

// ElementOptions are the optional parameters of an element query.
type ElementOptions struct {
	Version       int
	ElementID     string
	Type          string
	Nature        string
	Facet         string // none, dynamic, core or combined
	Path          string // JSONPath applied to each projected element
	IncludeDetail bool
	Depth         int
	Limit         *int // nil uses the server default; 0 returns no data
}

// QueryResult is the result of an element query.
type QueryResult struct {
	Data             []json.RawMessage `json:"data"`
	ResultCount      int               `json:"result_count"`
	TotalResultCount int               `json:"total_result_count"`
}

// RelationshipOptions are the optional parameters of a relationship walk.
// Nil depths use the server default of 1; 0 disables that direction.
type RelationshipOptions struct {
	Version     int
	ParentDepth *int
	ChildDepth  *int
}

// Token is one unit of a relationship line.
type Token struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// Line is one path from the focal element.
type Line struct {
	Depth  int     `json:"depth"`
	Tokens []Token `json:"tokens"`
}

// String renders the line as text, e.g. "[e1] --> [r1] --> [e2]".
func (l Line) String() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		switch t.Kind {
		case "indent":
			b.WriteString("    ")
		case "in_arrow":
			b.WriteString(" <-- ")
		case "out_arrow":
			b.WriteString(" --> ")
		case "value":
			b.WriteString("[" + t.ID + "]")
		}
	}
	return b.String()
}

// OutputGraph is the result of a relationship walk.
type OutputGraph struct {
	ModelID      string                     `json:"model_id"`
	Version      int                        `json:"version"`
	FocalID      string                     `json:"focal_id"`
	ParentLines  []Line                     `json:"parent_lines"`
	ChildLines   []Line                     `json:"child_lines"`
	ElementsData map[string]json.RawMessage `json:"elements_data"`
}

// Int returns a pointer to v, for the optional fields of the option structs.
func Int(v int) *int { return &v }

package models

import (
	"encoding/json"
	"strings"
)

// TokenKind identifies one token of a relationship line.
type TokenKind string

// Line token kinds.
const (
	TokenIndent   TokenKind = "indent"
	TokenInArrow  TokenKind = "in_arrow"
	TokenOutArrow TokenKind = "out_arrow"
	TokenValue    TokenKind = "value"
)

// Token is one rendering unit of a relationship line. ID is set only for value tokens.
type Token struct {
	Kind TokenKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// Line is one path from the focal element to a visited ancestor or descendant.
type Line struct {
	Depth  int     `json:"depth"`
	Tokens []Token `json:"tokens"`
}

// String renders the line as plain text, e.g. "[e2] <-- [r1] <-- [e1]".
func (l Line) String() string {
	var b strings.Builder

	for _, t := range l.Tokens {
		switch t.Kind {
		case TokenIndent:
			b.WriteString("    ")
		case TokenInArrow:
			b.WriteString(" <-- ")
		case TokenOutArrow:
			b.WriteString(" --> ")
		case TokenValue:
			b.WriteString("[" + t.ID + "]")
		}
	}

	return b.String()
}

// OutputGraph is the result of a relationship detail query. ElementsData maps
// every element and relationship id referenced by a line to its raw JSON.
type OutputGraph struct {
	ModelID      string                     `json:"model_id"`
	Version      int                        `json:"version"`
	FocalID      string                     `json:"focal_id"`
	ParentLines  []Line                     `json:"parent_lines"`
	ChildLines   []Line                     `json:"child_lines"`
	ElementsData map[string]json.RawMessage `json:"elements_data"`
}

// ModelStats summarizes one model version.
type ModelStats struct {
	ModelID                     string         `json:"model_id"`
	Version                     int            `json:"version"`
	ElementsCount               int            `json:"elements_count"`
	RelationshipsCount          int            `json:"relationships_count"`
	CountsByType                map[string]int `json:"counts_by_type"`
	CountsByNature              map[string]int `json:"counts_by_nature"`
	RelationshipsByType         map[string]int `json:"relationships_by_type"`
	RelationshipsByNature       map[string]int `json:"relationships_by_nature"`
	ConnectedRelationshipsCount *int           `json:"connected_relationships_count,omitempty"`
	ModelVersions               []int          `json:"model_versions"`
}

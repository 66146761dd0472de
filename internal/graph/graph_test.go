package graph_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jsfong/model-parser/internal/graph"
	"github.com/jsfong/model-parser/internal/models"
)

func el(id string) models.Element {
	return models.Element{Attributes: models.Attributes{ID: id, Type: "Wall", Nature: "Physical"}}
}

func rel(id, src, dst string) models.Relationship {
	return models.Relationship{Attributes: models.Attributes{ID: id, Type: "Contains"}, SourceID: src, TargetID: dst}
}

func newModel(elements []models.Element, relationships []models.Relationship) *models.Model {
	return &models.Model{Elements: elements, Relationships: relationships}
}

func lineStrings(lines []models.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}

	return out
}

func TestBuild_ResolvedRelationship(t *testing.T) {
	g := graph.Build(
		[]models.Element{el("e1"), el("e2")},
		[]models.Relationship{rel("r1", "e1", "e2")},
	)

	e1, _ := g.Connector("e1")
	e2, _ := g.Connector("e2")

	if diff := cmp.Diff([]graph.Edge{{RelationshipID: "r1", EndpointID: "e2"}}, e1.Out); diff != "" {
		t.Errorf("e1.Out mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]graph.Edge{{RelationshipID: "r1", EndpointID: "e1"}}, e2.In); diff != "" {
		t.Errorf("e2.In mismatch (-want +got):\n%s", diff)
	}

	if len(e1.In) != 0 || len(e2.Out) != 0 {
		t.Error("unexpected reverse edges")
	}

	if g.ResolvedCount() != 1 {
		t.Errorf("ResolvedCount = %d, want 1", g.ResolvedCount())
	}
}

func TestBuild_DanglingRelationships(t *testing.T) {
	g := graph.Build(
		[]models.Element{el("e1"), el("e2")},
		[]models.Relationship{
			rel("r1", "e1", "ghost"),
			rel("r2", "ghost", "e2"),
			rel("r3", "ghost", "phantom"),
		},
	)

	e1, _ := g.Connector("e1")
	e2, _ := g.Connector("e2")

	if diff := cmp.Diff([]graph.Edge{{RelationshipID: "r1", EndpointID: "ghost"}}, e1.Out); diff != "" {
		t.Errorf("e1.Out mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]graph.Edge{{RelationshipID: "r2", EndpointID: "ghost"}}, e2.In); diff != "" {
		t.Errorf("e2.In mismatch (-want +got):\n%s", diff)
	}

	if len(e1.In) != 0 || len(e2.Out) != 0 {
		t.Error("dangling relationships must stay one-sided")
	}

	if g.Has("ghost") || g.Len() != 2 {
		t.Errorf("missing endpoints must not become connectors, Len = %d", g.Len())
	}

	want := graph.Stats{Connectors: 2, Relationships: 3, Resolved: 0, Dangling: 3}
	if diff := cmp.Diff(want, g.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EdgeOrderFollowsInput(t *testing.T) {
	g := graph.Build(
		[]models.Element{el("a"), el("b"), el("c"), el("d")},
		[]models.Relationship{
			rel("r3", "a", "d"),
			rel("r1", "a", "b"),
			rel("r2", "a", "c"),
			rel("r4", "b", "d"),
		},
	)

	a, _ := g.Connector("a")

	want := []graph.Edge{
		{RelationshipID: "r3", EndpointID: "d"},
		{RelationshipID: "r1", EndpointID: "b"},
		{RelationshipID: "r2", EndpointID: "c"},
	}
	if diff := cmp.Diff(want, a.Out); diff != "" {
		t.Errorf("a.Out mismatch (-want +got):\n%s", diff)
	}

	d, _ := g.Connector("d")

	wantIn := []graph.Edge{
		{RelationshipID: "r3", EndpointID: "a"},
		{RelationshipID: "r4", EndpointID: "b"},
	}
	if diff := cmp.Diff(wantIn, d.In); diff != "" {
		t.Errorf("d.In mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_IsolatedElement(t *testing.T) {
	g := graph.Build([]models.Element{el("solo")}, nil)

	c, ok := g.Connector("solo")
	if !ok {
		t.Fatal("isolated element must have a connector")
	}

	if len(c.In) != 0 || len(c.Out) != 0 {
		t.Error("isolated element must have empty edge lists")
	}
}

func TestWalk_TwoCycleTerminates(t *testing.T) {
	g := graph.Build(
		[]models.Element{el("A"), el("B")},
		[]models.Relationship{rel("r1", "A", "B"), rel("r2", "B", "A")},
	)

	down, err := g.Walk("A", graph.Down, 10)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if diff := cmp.Diff([]string{"[A] --> [r1] --> [B]"}, lineStrings(down)); diff != "" {
		t.Errorf("down lines mismatch (-want +got):\n%s", diff)
	}

	up, err := g.Walk("A", graph.Up, 10)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if diff := cmp.Diff([]string{"[A] <-- [r2] <-- [B]"}, lineStrings(up)); diff != "" {
		t.Errorf("up lines mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_DepthBoundAndIndent(t *testing.T) {
	// a -> b -> c -> d, plus a shortcut a -> c.
	g := graph.Build(
		[]models.Element{el("a"), el("b"), el("c"), el("d")},
		[]models.Relationship{
			rel("ab", "a", "b"),
			rel("bc", "b", "c"),
			rel("cd", "c", "d"),
			rel("ac", "a", "c"),
		},
	)

	tests := []struct {
		name  string
		depth int
		want  []string
	}{
		{name: "zero", depth: 0, want: []string{}},
		{name: "negative", depth: -2, want: []string{}},
		{name: "one hop", depth: 1, want: []string{
			"[a] --> [ab] --> [b]",
			"[a] --> [ac] --> [c]",
		}},
		{name: "two hops", depth: 2, want: []string{
			"[a] --> [ab] --> [b]",
			"[a] --> [ac] --> [c]",
			"    [a] --> [ac] --> [c] --> [cd] --> [d]",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := g.Walk("a", graph.Down, tc.depth)
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}

			if diff := cmp.Diff(tc.want, lineStrings(lines)); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalk_SkipsDanglingEdges(t *testing.T) {
	g := graph.Build(
		[]models.Element{el("a"), el("b")},
		[]models.Relationship{rel("r0", "a", "ghost"), rel("r1", "a", "b")},
	)

	lines, err := g.Walk("a", graph.Down, 3)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if diff := cmp.Diff([]string{"[a] --> [r1] --> [b]"}, lineStrings(lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_UnknownFocal(t *testing.T) {
	g := graph.Build([]models.Element{el("a")}, nil)

	if _, err := g.Walk("zzz", graph.Down, 1); !errors.Is(err, models.ErrElementNotFound) {
		t.Errorf("err = %v, want ErrElementNotFound", err)
	}
}

func TestTraverse_ParentLineAndElementsData(t *testing.T) {
	m := newModel(
		[]models.Element{el("e1"), el("e2"), el("e3")},
		[]models.Relationship{rel("r1", "e1", "e2")},
	)
	g := graph.Build(m.Elements, m.Relationships)

	out, err := graph.Traverse(g, m, "e2", 1, 1)
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	if diff := cmp.Diff([]string{"[e2] <-- [r1] <-- [e1]"}, lineStrings(out.ParentLines)); diff != "" {
		t.Errorf("parent lines mismatch (-want +got):\n%s", diff)
	}

	if out.ChildLines == nil || len(out.ChildLines) != 0 {
		t.Errorf("expected empty, non-nil child lines, got %v", out.ChildLines)
	}

	for _, id := range []string{"e1", "e2", "r1"} {
		if _, ok := out.ElementsData[id]; !ok {
			t.Errorf("elements_data missing %s", id)
		}
	}

	if _, ok := out.ElementsData["e3"]; ok {
		t.Error("elements_data must only hold referenced ids")
	}

	var r1 map[string]any
	if err := json.Unmarshal(out.ElementsData["r1"], &r1); err != nil {
		t.Fatalf("decoding r1: %v", err)
	}

	if r1["sourceId"] != "e1" || r1["targetId"] != "e2" {
		t.Errorf("r1 stored form = %v", r1)
	}
}

func TestTraverse_UnknownFocal(t *testing.T) {
	m := newModel([]models.Element{el("e1")}, nil)
	g := graph.Build(m.Elements, m.Relationships)

	if _, err := graph.Traverse(g, m, "nope", 1, 1); !errors.Is(err, models.ErrElementNotFound) {
		t.Errorf("err = %v, want ErrElementNotFound", err)
	}
}

func TestTraverse_ElementsDataKeepsStoredForm(t *testing.T) {
	var m models.Model
	if err := json.Unmarshal([]byte(`{
		"modelId": "m",
		"elements": [
			{"id":"e1","type":"Pump","facets":{"serial":12345678901234567890,"big":9007199254740993}},
			{"id":"e2","type":"Valve"}
		],
		"relationships": [{"id":"r1","sourceId":"e1","targetId":"e2"}]
	}`), &m); err != nil {
		t.Fatalf("decoding model: %v", err)
	}

	g := graph.Build(m.Elements, m.Relationships)

	out, err := graph.Traverse(g, &m, "e2", 1, 0)
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	if want := `{"facets":{"big":9007199254740993,"serial":12345678901234567890},"id":"e1","type":"Pump"}`; string(out.ElementsData["e1"]) != want {
		t.Errorf("e1 stored form = %s, want %s", out.ElementsData["e1"], want)
	}

	if want := `{"id":"r1","sourceId":"e1","targetId":"e2"}`; string(out.ElementsData["r1"]) != want {
		t.Errorf("r1 stored form = %s, want %s", out.ElementsData["r1"], want)
	}
}

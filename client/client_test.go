package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

const testModelID = "aa5bc4b2-156f-4bad-b13a-4ccf31df53ca"

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/", WithAPIKey("test-key"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0", SchemaVersion: 2})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.0" || resp.SchemaVersion != 2 {
		t.Errorf("unexpected health %+v", resp)
	}
}

func TestVersionsAndStats(t *testing.T) {
	var gotVersion string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/models/{id}/versions": func(w http.ResponseWriter, r *http.Request) {
			jsonResponse(w, 200, map[string]any{"model_id": r.PathValue("id"), "versions": []int{3, 2, 1}})
		},
		"GET /api/v1/models/{id}/stats": func(w http.ResponseWriter, r *http.Request) {
			gotVersion = r.URL.Query().Get("version")
			jsonResponse(w, 200, map[string]any{
				"model_id":                      r.PathValue("id"),
				"version":                       3,
				"elements_count":                10,
				"connected_relationships_count": 4,
			})
		},
	})
	ctx := context.Background()

	versions, err := c.Models.Versions(ctx, testModelID)
	if err != nil {
		t.Fatalf("Versions() error: %v", err)
	}
	if len(versions) != 3 || versions[0] != 3 {
		t.Errorf("got versions %v", versions)
	}

	stats, err := c.Models.Stats(ctx, testModelID, 0)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if gotVersion != "" {
		t.Errorf("latest must not send a version, got %q", gotVersion)
	}
	if stats.ElementsCount != 10 || stats.ConnectedRelationships == nil || *stats.ConnectedRelationships != 4 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if _, err := c.Models.Stats(ctx, testModelID, 3); err != nil {
		t.Fatalf("Stats(3) error: %v", err)
	}
	if gotVersion != "3" {
		t.Errorf("got version param %q, want 3", gotVersion)
	}
}

func TestElements(t *testing.T) {
	tests := []struct {
		name string
		opts ElementOptions
		want url.Values
	}{
		{name: "defaults", want: url.Values{}},
		{
			name: "all options",
			opts: ElementOptions{
				Version: 2, ElementID: "e1", Type: "Block", Nature: "Spec",
				Facet: "core", Path: "$.a", IncludeDetail: true, Depth: 3, Limit: Int(0),
			},
			want: url.Values{
				"version": {"2"}, "element_id": {"e1"}, "type": {"Block"}, "nature": {"Spec"},
				"facet": {"core"}, "path": {"$.a"}, "detail": {"true"}, "depth": {"3"}, "limit": {"0"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got url.Values
			_, c := newTestServer(t, map[string]http.HandlerFunc{
				"GET /api/v1/models/{id}/elements": func(w http.ResponseWriter, r *http.Request) {
					got = r.URL.Query()
					jsonResponse(w, 200, map[string]any{
						"data":               []any{map[string]any{"id": "e1"}},
						"result_count":       1,
						"total_result_count": 5,
					})
				},
			})

			res, err := c.Models.Elements(context.Background(), testModelID, tc.opts)
			if err != nil {
				t.Fatalf("Elements() error: %v", err)
			}
			if res.ResultCount != 1 || res.TotalResultCount != 5 || len(res.Data) != 1 {
				t.Errorf("unexpected result %+v", res)
			}
			if got.Encode() != tc.want.Encode() {
				t.Errorf("query = %s, want %s", got.Encode(), tc.want.Encode())
			}
		})
	}
}

func TestRelationships(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/models/{id}/elements/{eid}/relationships": func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.PathValue("eid")
			gotQuery = r.URL.Query()
			jsonResponse(w, 200, map[string]any{
				"focal_id": r.PathValue("eid"),
				"child_lines": []any{map[string]any{
					"depth": 1,
					"tokens": []any{
						map[string]any{"kind": "value", "id": "e1"},
						map[string]any{"kind": "out_arrow"},
						map[string]any{"kind": "value", "id": "r1"},
						map[string]any{"kind": "out_arrow"},
						map[string]any{"kind": "value", "id": "e2"},
					},
				}},
			})
		},
	})

	out, err := c.Models.Relationships(context.Background(), testModelID, "e1", RelationshipOptions{ParentDepth: Int(0), ChildDepth: Int(2)})
	if err != nil {
		t.Fatalf("Relationships() error: %v", err)
	}
	if gotPath != "e1" || gotQuery.Get("parent_depth") != "0" || gotQuery.Get("child_depth") != "2" {
		t.Errorf("path=%q query=%v", gotPath, gotQuery)
	}
	if len(out.ChildLines) != 1 || out.ChildLines[0].String() != "[e1] --> [r1] --> [e2]" {
		t.Errorf("unexpected lines %+v", out.ChildLines)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/models/{id}/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "model not found", "request_id": "rid-1"})
		},
		"GET /api/v1/models/{id}/elements": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 422, map[string]string{"code": "unprocessable_model", "message": "bad gzip"})
		},
		"GET /api/v1/models/{id}/versions": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down")) //nolint:errcheck
		},
	})
	ctx := context.Background()

	_, err := c.Models.Stats(ctx, testModelID, 9)
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}
	if apiErr, ok := err.(*APIError); !ok || apiErr.RequestID != "rid-1" {
		t.Errorf("request id not decoded: %v", err)
	}

	_, err = c.Models.Elements(ctx, testModelID, ElementOptions{})
	if !IsUnprocessable(err) || IsInvalid(err) {
		t.Errorf("expected unprocessable, got: %v", err)
	}

	_, err = c.Models.Versions(ctx, testModelID)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Code != "unknown" || apiErr.Message != "upstream down" {
		t.Errorf("expected raw fallback, got: %v", err)
	}
}

func TestAuthHeader(t *testing.T) {
	var gotAuth string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(w, 200, HealthResponse{Status: "ok"})
		},
	})

	c.Health(context.Background()) //nolint:errcheck
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q, want %q", gotAuth, "Bearer test-key")
	}
}

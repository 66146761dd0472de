package store_test

import (
	"errors"
	"testing"

	"github.com/jsfong/model-parser/internal/models"
	"github.com/jsfong/model-parser/internal/store"
)

const sampleModel = `{
	"schemaVersion": "1.0",
	"modelId": "aa5bc4b2-156f-4bad-b13a-4ccf31df53ca",
	"siteModelId": "site-1",
	"version": 2,
	"cubsObjects": [
		{"id": "e1", "type": "Wall", "nature": "Physical", "version": 1, "facets": {}},
		{"id": "e2", "type": "Door", "nature": "Physical", "version": 1, "facets": {}}
	],
	"relationships": [
		{"id": "r1", "sourceId": "e1", "targetId": "e2", "type": "Contains", "nature": "Logical", "version": 1, "facets": {}}
	]
}`

func mustCompress(t *testing.T, data string) []byte {
	t.Helper()

	out, err := store.Compress([]byte(data))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	return out
}

func TestDecodeModel(t *testing.T) {
	m, err := store.DecodeModel(mustCompress(t, sampleModel))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}

	if m.Version != 2 || m.SiteModelID != "site-1" {
		t.Errorf("unexpected header: version=%d site=%q", m.Version, m.SiteModelID)
	}

	if len(m.Elements) != 2 || len(m.Relationships) != 1 {
		t.Fatalf("got %d elements, %d relationships", len(m.Elements), len(m.Relationships))
	}

	if m.Relationships[0].SourceID != "e1" {
		t.Errorf("SourceID = %q, want e1", m.Relationships[0].SourceID)
	}
}

func TestDecodeModel_Envelope(t *testing.T) {
	m, err := store.DecodeModel(mustCompress(t, `{"data":`+sampleModel+`}`))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}

	if len(m.Elements) != 2 {
		t.Errorf("got %d elements, want 2", len(m.Elements))
	}
}

func TestDecodeModel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{name: "not gzip", payload: []byte(sampleModel), wantErr: models.ErrDecode},
		{name: "truncated gzip", payload: mustCompress(t, sampleModel)[:20], wantErr: models.ErrDecode},
		{name: "not json", payload: mustCompress(t, "not json"), wantErr: models.ErrParse},
		{name: "wrong shape", payload: mustCompress(t, `{"elements": {"id": "e1"}}`), wantErr: models.ErrParse},
		{name: "element without id", payload: mustCompress(t, `{"elements": [{"type": "Wall"}]}`), wantErr: models.ErrParse},
		{name: "null payload", payload: mustCompress(t, "null"), wantErr: models.ErrParse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.DecodeModel(tc.payload)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEncodeModel_RoundTrip(t *testing.T) {
	orig, err := store.ParseModel([]byte(sampleModel))
	if err != nil {
		t.Fatalf("ParseModel: %v", err)
	}

	encoded, err := store.EncodeModel(orig)
	if err != nil {
		t.Fatalf("EncodeModel: %v", err)
	}

	got, err := store.DecodeModel(encoded)
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}

	if got.ModelID != orig.ModelID || len(got.Elements) != len(orig.Elements) {
		t.Errorf("round trip changed the model: %+v", got)
	}

	e, ok := got.ElementByID("e2")
	if !ok || e.Type != "Door" {
		t.Errorf("ElementByID(e2) = %+v, %v", e, ok)
	}
}

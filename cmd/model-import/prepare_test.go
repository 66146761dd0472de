package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jsfong/model-parser/internal/models"
	"github.com/jsfong/model-parser/internal/store"
)

const importModelID = "aa5bc4b2-156f-4bad-b13a-4ccf31df53ca"

var sampleModel = []byte(`{
	"modelId": "` + importModelID + `",
	"version": 4,
	"elements": [{"id": "e1", "type": "Block", "nature": "Spec", "name": "A"}],
	"relationships": []
}`)

func TestPrepare_PlainJSON(t *testing.T) {
	p, err := prepare(sampleModel, "")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if p.modelID != importModelID {
		t.Errorf("model id = %q, want the payload's modelId", p.modelID)
	}

	if len(p.model.Elements) != 1 {
		t.Errorf("elements = %d, want 1", len(p.model.Elements))
	}

	plain, err := store.Decompress(p.compressed)
	if err != nil {
		t.Fatalf("stored payload is not gzip: %v", err)
	}

	if !bytes.Equal(plain, sampleModel) {
		t.Error("stored payload must be the original JSON")
	}
}

func TestPrepare_GzipKeptVerbatim(t *testing.T) {
	gz, err := store.Compress([]byte(`{"data":` + string(sampleModel) + `}`))
	if err != nil {
		t.Fatal(err)
	}

	p, err := prepare(gz, "")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if !bytes.Equal(p.compressed, gz) {
		t.Error("gzipped input must be stored unchanged")
	}
}

func TestPrepare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		modelID string
		wantErr error
	}{
		{name: "not json", raw: []byte("nope"), wantErr: models.ErrParse},
		{name: "corrupt gzip", raw: []byte{0x1f, 0x8b, 0x00}, wantErr: models.ErrDecode},
		{name: "bad flag id", raw: sampleModel, modelID: "model-1", wantErr: models.ErrInvalidInput},
		{name: "no id anywhere", raw: []byte(`{"elements":[]}`), wantErr: models.ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := prepare(tc.raw, tc.modelID); !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

package main

import (
	"bytes"
	"fmt"

	"github.com/jsfong/model-parser/internal/models"
	"github.com/jsfong/model-parser/internal/store"
)

var gzipMagic = []byte{0x1f, 0x8b}

type prepared struct {
	modelID    string
	model      *models.Model
	compressed []byte
}

// prepare validates an import payload and returns it in stored form. Gzipped
// input is kept byte for byte; plain JSON is compressed. An empty modelID
// falls back to the modelId field of the payload.
func prepare(raw []byte, modelID string) (*prepared, error) {
	var (
		plain      = raw
		compressed []byte
		err        error
	)

	if bytes.HasPrefix(raw, gzipMagic) {
		compressed = raw
		if plain, err = store.Decompress(raw); err != nil {
			return nil, err
		}
	}

	m, err := store.ParseModel(plain)
	if err != nil {
		return nil, err
	}

	if modelID == "" {
		modelID = m.ModelID
	}

	if err := models.ValidateModelID(modelID); err != nil {
		return nil, fmt.Errorf("model id %q: %w", modelID, err)
	}

	if compressed == nil {
		if compressed, err = store.Compress(plain); err != nil {
			return nil, err
		}
	}

	return &prepared{modelID: modelID, model: m, compressed: compressed}, nil
}

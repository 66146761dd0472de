package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/jsfong/model-parser/internal/models"
)

// maxDecodedSize bounds how much a single payload may inflate to.
const maxDecodedSize = 1 << 30

// Decompress inflates a gzip payload. Any failure wraps models.ErrDecode.
func Decompress(compressed []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDecode, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxDecodedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrDecode, err)
	}

	if len(data) > maxDecodedSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", models.ErrDecode, maxDecodedSize)
	}

	return data, nil
}

// Compress gzips a payload.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flushing compressed payload: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseModel decodes model JSON. It accepts the bare model object as well as
// the {"data": {...}} envelope. Any failure wraps models.ErrParse.
func ParseModel(data []byte) (*models.Model, error) {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrParse, err)
	}

	if len(probe.Data) > 0 && string(probe.Data) != "null" {
		data = probe.Data
	}

	if string(bytes.TrimSpace(data)) == "null" {
		return nil, fmt.Errorf("%w: payload is null", models.ErrParse)
	}

	m := &models.Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrParse, err)
	}

	return m, nil
}

// DecodeModel inflates and parses a stored payload.
func DecodeModel(compressed []byte) (*models.Model, error) {
	data, err := Decompress(compressed)
	if err != nil {
		return nil, err
	}

	return ParseModel(data)
}

// EncodeModel serializes and gzips a model into its stored form.
func EncodeModel(m *models.Model) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling model: %w", err)
	}

	return Compress(data)
}

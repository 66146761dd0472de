package client

import (
	"context"
	"net/url"
	"strconv"
)

// ModelService queries saved models.
type ModelService struct {
	c *Client
}

func modelPath(id, suffix string) string {
	return "/api/v1/models/" + url.PathEscape(id) + suffix
}

func versionParams(version int) url.Values {
	params := url.Values{}
	if version > 0 {
		params.Set("version", strconv.Itoa(version))
	}
	return params
}

// Versions lists the stored versions of a model, newest first.
func (s *ModelService) Versions(ctx context.Context, modelID string) ([]int, error) {
	var resp struct {
		Versions []int `json:"versions"`
	}
	if err := s.c.get(ctx, modelPath(modelID, "/versions"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Versions, nil
}

// Stats summarizes a model version. A version <= 0 selects the latest.
func (s *ModelService) Stats(ctx context.Context, modelID string, version int) (*ModelStats, error) {
	var resp ModelStats
	if err := s.c.get(ctx, modelPath(modelID, "/stats"), versionParams(version), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Elements runs an element query. Zero-valued options fall back to the
// server defaults: every type and nature, no facet, limit 100.
func (s *ModelService) Elements(ctx context.Context, modelID string, opts ElementOptions) (*QueryResult, error) {
	params := versionParams(opts.Version)
	setIfNotEmpty(params, "element_id", opts.ElementID)
	setIfNotEmpty(params, "type", opts.Type)
	setIfNotEmpty(params, "nature", opts.Nature)
	setIfNotEmpty(params, "facet", opts.Facet)
	setIfNotEmpty(params, "path", opts.Path)
	if opts.IncludeDetail {
		params.Set("detail", "true")
	}
	if opts.Depth > 0 {
		params.Set("depth", strconv.Itoa(opts.Depth))
	}
	if opts.Limit != nil {
		params.Set("limit", strconv.Itoa(*opts.Limit))
	}

	var resp QueryResult
	if err := s.c.get(ctx, modelPath(modelID, "/elements"), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Relationships walks the ancestors and descendants of one element.
func (s *ModelService) Relationships(ctx context.Context, modelID, elementID string, opts RelationshipOptions) (*OutputGraph, error) {
	params := versionParams(opts.Version)
	if opts.ParentDepth != nil {
		params.Set("parent_depth", strconv.Itoa(*opts.ParentDepth))
	}
	if opts.ChildDepth != nil {
		params.Set("child_depth", strconv.Itoa(*opts.ChildDepth))
	}

	var resp OutputGraph
	path := modelPath(modelID, "/elements/"+url.PathEscape(elementID)+"/relationships")
	if err := s.c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

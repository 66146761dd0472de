package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Query parameter defaults and caps.
const (
	defaultLimit      = 100
	maxLimit          = 10000
	defaultDepth      = 0
	maxDepth          = 1000
	defaultWalkDepth  = 1
	maxWalkDepth      = 100
	maxElementIDBytes = 255
)

// intParam reads an optional non-negative integer query parameter. Values
// above ceiling are clamped.
func intParam(c *gin.Context, name string, fallback, ceiling int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}

	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}

	return min(v, ceiling), nil
}

// versionParam reads ?version=. Absent or "latest" selects the newest
// version and is returned as 0.
func versionParam(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("version"))
	if raw == "" || strings.EqualFold(raw, "latest") {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("version must be a positive integer or \"latest\"")
	}

	return v, nil
}

func boolParam(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}

	return v, nil
}

// validateElementID checks that an element id path parameter is usable.
func validateElementID(id string) error {
	if id == "" {
		return fmt.Errorf("element id must not be empty")
	}

	if len(id) > maxElementIDBytes {
		return fmt.Errorf("element id exceeds maximum length of %d", maxElementIDBytes)
	}

	return nil
}

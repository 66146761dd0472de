package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/models"
)

// ModelHandler serves the model query endpoints.
type ModelHandler struct {
	svc ModelService
	log *logrus.Logger
}

// NewModelHandler creates a ModelHandler with the given service and logger.
func NewModelHandler(svc ModelService, log *logrus.Logger) *ModelHandler {
	return &ModelHandler{svc: svc, log: log}
}

type versionsResponse struct {
	ModelID  string `json:"model_id"`
	Versions []int  `json:"versions"`
}

// Versions handles GET /api/v1/models/:id/versions.
func (h *ModelHandler) Versions(c *gin.Context) {
	modelID := c.Param("id")

	versions, err := h.svc.ListVersions(c.Request.Context(), modelID)
	if err != nil {
		respondServiceError(c, h.log, err, "listing model versions")

		return
	}

	c.JSON(http.StatusOK, versionsResponse{ModelID: modelID, Versions: versions})
}

// Stats handles GET /api/v1/models/:id/stats.
func (h *ModelHandler) Stats(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	stats, err := h.svc.GetModelStats(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		respondServiceError(c, h.log, err, "computing model stats")

		return
	}

	c.JSON(http.StatusOK, stats)
}

// Elements handles GET /api/v1/models/:id/elements.
func (h *ModelHandler) Elements(c *gin.Context) {
	q, err := elementQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.svc.QueryElements(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, h.log, err, "querying elements")

		return
	}

	c.JSON(http.StatusOK, result)
}

func elementQuery(c *gin.Context) (models.ElementQuery, error) {
	q := models.ElementQuery{
		ModelID:   c.Param("id"),
		ElementID: c.Query("element_id"),
		Type:      c.DefaultQuery("type", models.FilterAll),
		Nature:    c.DefaultQuery("nature", models.FilterAll),
		Facet:     models.FacetKind(c.DefaultQuery("facet", string(models.FacetNone))),
		Path:      c.Query("path"),
	}

	var err error

	if q.Version, err = versionParam(c); err != nil {
		return q, err
	}

	if q.IncludeDetail, err = boolParam(c, "detail"); err != nil {
		return q, err
	}

	if q.Depth, err = intParam(c, "depth", defaultDepth, maxDepth); err != nil {
		return q, err
	}

	if q.Limit, err = intParam(c, "limit", defaultLimit, maxLimit); err != nil {
		return q, err
	}

	return q, nil
}

// Relationships handles GET /api/v1/models/:id/elements/:elementId/relationships.
func (h *ModelHandler) Relationships(c *gin.Context) {
	elementID := c.Param("elementId")
	if err := validateElementID(elementID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	version, err := versionParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	parentDepth, err := intParam(c, "parent_depth", defaultWalkDepth, maxWalkDepth)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	childDepth, err := intParam(c, "child_depth", defaultWalkDepth, maxWalkDepth)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	out, err := h.svc.GetRelationshipDetail(c.Request.Context(), c.Param("id"), version, elementID, parentDepth, childDepth)
	if err != nil {
		respondServiceError(c, h.log, err, "walking relationships")

		return
	}

	c.JSON(http.StatusOK, out)
}

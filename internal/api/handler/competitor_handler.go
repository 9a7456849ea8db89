package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jaektomo/SweepstakeManager/internal/service"
)

// CompetitorHandler serves the shared competitor roster.
type CompetitorHandler struct {
	competitorSvc *service.CompetitorService
}

// NewCompetitorHandler creates a CompetitorHandler.
func NewCompetitorHandler(competitorSvc *service.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorSvc: competitorSvc}
}

// List godoc
// GET /api/competitors
func (h *CompetitorHandler) List(c *gin.Context) {
	roster, err := h.competitorSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "could not list competitors")
		return
	}
	respondSuccess(c, http.StatusOK, roster)
}

// Add godoc
// POST /api/competitors
// Body: {"name":"Vauban"}
func (h *CompetitorHandler) Add(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	comp, err := h.competitorSvc.Add(c.Request.Context(), body.Name)
	if err != nil {
		respondServiceError(c, err, "could not add competitor")
		return
	}
	respondSuccess(c, http.StatusCreated, comp)
}

// Remove godoc
// DELETE /api/competitors/:id
func (h *CompetitorHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid competitor id")
		return
	}
	if err := h.competitorSvc.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "could not remove competitor")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Standard response helpers
// ──────────────────────────────────────────────────────────────────────────────

// respondSuccess writes {"success": true, "data": data} with the given status.
func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes {"success": false, "error": msg, "code": code}.
func respondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}

// respondList writes {"success": true, "data": items, "meta": {...}}.
func respondList(c *gin.Context, items any, total, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// respondServiceError maps a service error onto the HTTP status its domain
// sentinel calls for. Anything unrecognised is a 500 carrying fallback.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrStaleWrite):
		respondError(c, http.StatusConflict, "ERR_STALE_WRITE", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "ERR_INVALID_STATE", err.Error())
	case errors.Is(err, domain.ErrInsufficientSupply):
		respondError(c, http.StatusUnprocessableEntity, "ERR_INSUFFICIENT_SUPPLY", err.Error())
	case domain.IsUnprocessable(err):
		respondError(c, http.StatusUnprocessableEntity, "ERR_UNPROCESSABLE", err.Error())
	case errors.Is(err, domain.ErrPrizeOvercommitted):
		respondError(c, http.StatusBadRequest, "ERR_PRIZE_OVERCOMMITTED", err.Error())
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", fallback)
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return
}

// paginate returns the page of items selected by page and limit.
func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+limit, len(items))]
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
	"github.com/jaektomo/SweepstakeManager/internal/service"
)

// PoolHandler serves the pool lifecycle endpoints.
type PoolHandler struct {
	poolSvc *service.PoolService
}

// NewPoolHandler creates a PoolHandler.
func NewPoolHandler(poolSvc *service.PoolService) *PoolHandler {
	return &PoolHandler{poolSvc: poolSvc}
}

type prizeShareBody struct {
	Place      int    `json:"place"`
	Percentage string `json:"percentage" binding:"required"`
}

// Create godoc
// POST /api/pools
// Body: {"name":"Melbourne Cup","entry_fee":"10.00","prize_shares":[{"place":1,"percentage":"60"}],"competitors":["Vauban"]}
func (h *PoolHandler) Create(c *gin.Context) {
	var body struct {
		Name        string           `json:"name"         binding:"required"`
		EntryFee    string           `json:"entry_fee"    binding:"required"`
		PrizeShares []prizeShareBody `json:"prize_shares" binding:"dive"`
		Competitors []string         `json:"competitors"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	fee, err := decimal.NewFromString(body.EntryFee)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "entry_fee must be a decimal string")
		return
	}

	shares := make(domain.PrizeShares, len(body.PrizeShares))
	for i, s := range body.PrizeShares {
		pct, err := decimal.NewFromString(s.Percentage)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_PERCENTAGE", "percentage must be a decimal string")
			return
		}
		place := s.Place
		if place == 0 {
			place = i + 1
		}
		shares[i] = domain.PrizeShare{Place: place, Percentage: pct}
	}

	pool, err := h.poolSvc.CreatePool(c.Request.Context(), service.CreatePoolInput{
		Name:        body.Name,
		EntryFee:    fee,
		PrizeShares: shares,
		Competitors: body.Competitors,
	})
	if err != nil {
		respondServiceError(c, err, "could not create pool")
		return
	}
	respondSuccess(c, http.StatusCreated, pool)
}

// List godoc
// GET /api/pools?q=cup&page=1&limit=20
func (h *PoolHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	pools, err := h.poolSvc.ListPools(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "could not list pools")
		return
	}
	respondList(c, paginate(pools, page, limit), len(pools), page, limit)
}

// GetByID godoc
// GET /api/pools/:id
func (h *PoolHandler) GetByID(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	pool, err := h.poolSvc.GetPool(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "could not fetch pool")
		return
	}
	respondSuccess(c, http.StatusOK, pool)
}

// Summary godoc
// GET /api/pools/:id/summary
func (h *PoolHandler) Summary(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	sum, err := h.poolSvc.Summary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "could not summarise pool")
		return
	}
	respondSuccess(c, http.StatusOK, sum)
}

// Delete godoc
// DELETE /api/pools/:id
func (h *PoolHandler) Delete(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	if err := h.poolSvc.DeletePool(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "could not delete pool")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

// AddParticipant godoc
// POST /api/pools/:id/participants
// Body: {"name":"Ann"}
func (h *PoolHandler) AddParticipant(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	pool, err := h.poolSvc.AddParticipant(c.Request.Context(), id, body.Name)
	if err != nil {
		respondServiceError(c, err, "could not add participant")
		return
	}
	respondSuccess(c, http.StatusCreated, pool)
}

// SetPaid godoc
// PATCH /api/pools/:id/participants/:index
// Body: {"has_paid":true}
func (h *PoolHandler) SetPaid(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_INDEX", "participant index must be an integer")
		return
	}
	var body struct {
		HasPaid *bool `json:"has_paid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	pool, err := h.poolSvc.SetParticipantPaid(c.Request.Context(), id, index, *body.HasPaid)
	if err != nil {
		respondServiceError(c, err, "could not update participant")
		return
	}
	respondSuccess(c, http.StatusOK, pool)
}

// Assign godoc
// POST /api/pools/:id/assign
func (h *PoolHandler) Assign(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	pool, err := h.poolSvc.Assign(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "could not assign competitors")
		return
	}
	respondSuccess(c, http.StatusOK, pool)
}

// Settle godoc
// POST /api/pools/:id/settle
func (h *PoolHandler) Settle(c *gin.Context) {
	id, ok := poolID(c)
	if !ok {
		return
	}
	pool, err := h.poolSvc.Settle(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "could not settle pool")
		return
	}
	respondSuccess(c, http.StatusOK, pool)
}

func poolID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid pool id")
		return uuid.Nil, false
	}
	return id, true
}

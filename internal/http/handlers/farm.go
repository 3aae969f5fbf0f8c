package handlers

import (
	"errors"
	"net/http"
	"sort"

	"farm_webapp/internal/domain"
	"farm_webapp/internal/farm"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain sentinels to HTTP statuses. Gameplay rejections are
// no-ops server-side; the presentation layer shows them as transient
// messages.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownSlot),
		errors.Is(err, domain.ErrUnknownCrop),
		errors.Is(err, domain.ErrUnknownResearch),
		errors.Is(err, domain.ErrUnknownBonus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrPoolLocked):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoCropAtSlot):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSlotOccupied),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrAlreadyOnboarded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) engineFor(c *gin.Context) (*farm.Engine, bool) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	engine, err := h.Farms.Acquire(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, false
	}
	return engine, true
}

// FarmState returns the derived display state for every slot.
func (h *Handler) FarmState(c *gin.Context) {
	engine, ok := h.engineFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.DisplayState())
}

type PlantRequest struct {
	Slot int    `json:"slot"`
	Type string `json:"type" binding:"required"`
}

func (h *Handler) Plant(c *gin.Context) {
	var req PlantRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	engine, ok := h.engineFor(c)
	if !ok {
		return
	}

	crop, err := engine.Plant(c.Request.Context(), req.Slot, domain.CropType(req.Type))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"crop":  crop,
		"state": engine.DisplayState(),
	})
}

type HarvestRequest struct {
	Slot int `json:"slot"`
}

func (h *Handler) Harvest(c *gin.Context) {
	var req HarvestRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	engine, ok := h.engineFor(c)
	if !ok {
		return
	}

	reward, err := engine.Harvest(c.Request.Context(), req.Slot)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reward": reward,
		"state":  engine.DisplayState(),
	})
}

type ResearchRequest struct {
	Key string `json:"key" binding:"required"`
}

func (h *Handler) Research(c *gin.Context) {
	var req ResearchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	engine, ok := h.engineFor(c)
	if !ok {
		return
	}

	if err := engine.Unlock(c.Request.Context(), req.Key); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": engine.DisplayState()})
}

type BonusRequest struct {
	BonusID int `json:"bonus_id" binding:"required"`
}

func (h *Handler) SelectBonus(c *gin.Context) {
	var req BonusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	engine, ok := h.engineFor(c)
	if !ok {
		return
	}

	if err := engine.SelectBonus(c.Request.Context(), req.BonusID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": engine.DisplayState()})
}

type ExchangeRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (h *Handler) ExchangeGold(c *gin.Context) {
	var req ExchangeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	engine, ok := h.engineFor(c)
	if !ok {
		return
	}

	credited, err := engine.ExchangeGold(c.Request.Context(), req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credited": credited,
		"state":    engine.DisplayState(),
	})
}

// Catalog serves the static crop, research and bonus tables so the frontend
// renders prices without hardcoding them.
func (h *Handler) Catalog(c *gin.Context) {
	crops := make([]domain.CropInfo, 0, len(domain.Catalog))
	for _, info := range domain.Catalog {
		crops = append(crops, info)
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i].Type < crops[j].Type })
	research := make([]domain.ResearchItem, 0, len(domain.ResearchCatalog))
	for _, item := range domain.ResearchCatalog {
		research = append(research, item)
	}
	sort.Slice(research, func(i, j int) bool { return research[i].Key < research[j].Key })

	c.JSON(http.StatusOK, gin.H{
		"crops":    crops,
		"research": research,
		"bonuses":  domain.Bonuses,
	})
}

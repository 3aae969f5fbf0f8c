package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the persisted record for the authenticated player, read fresh
// from the document store.
func (h *Handler) Me(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	player, err := h.Players.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id":     player.PlayerID,
		"source":        player.Source,
		"silver":        player.Silver,
		"gold":          player.Gold,
		"crops":         player.Crops,
		"unlocks":       player.Unlocks,
		"has_onboarded": player.HasOnboarded,
		"created_at":    player.CreatedAt,
	})
}

package handlers

import (
	"context"
	"net/http"

	"farm_webapp/internal/identity"
	"farm_webapp/internal/service"
	"farm_webapp/internal/telegram"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth resolves the session identity and returns a session token plus the
// persisted player snapshot. With valid Telegram init_data the host identity
// wins; otherwise the farm_uid cookie is reused, or a fresh anonymous token
// is minted and set on the response.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if len(req.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	var host identity.HostProvider
	if req.InitData != "" {
		values, err := telegram.Verify(req.InitData, h.BotToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
			return
		}
		user, err := telegram.ParseUser(values)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user json"})
			return
		}
		host = identity.HostFunc(func(context.Context) (*identity.HostIdentity, error) {
			return &identity.HostIdentity{
				ID:        user.ID,
				Username:  user.Username,
				FirstName: user.FirstName,
				Locale:    user.LanguageCode,
				Premium:   user.IsPremium,
			}, nil
		})
	}

	resolver := identity.NewResolver(host, identity.NewCookieTokenStore(c), h.Players)
	res, err := resolver.Resolve(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity unavailable, retry"})
		return
	}

	token, err := service.GenerateSessionToken(res.PlayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"player": gin.H{
			"player_id":     res.Player.PlayerID,
			"source":        res.Player.Source,
			"silver":        res.Player.Silver,
			"gold":          res.Player.Gold,
			"crops":         res.Player.Crops,
			"unlocks":       res.Player.Unlocks,
			"has_onboarded": res.Player.HasOnboarded,
			"created_at":    res.Player.CreatedAt,
		},
	})
}

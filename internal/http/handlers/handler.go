package handlers

import (
	"farm_webapp/internal/farm"
	"farm_webapp/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB       *pgxpool.Pool
	BotToken string
	Players  *repository.PlayerRepository
	Farms    *farm.Manager
}

func NewHandler(db *pgxpool.Pool, botToken string, farms *farm.Manager) *Handler {
	return &Handler{
		DB:       db,
		BotToken: botToken,
		Players:  repository.NewPlayerRepository(db),
		Farms:    farms,
	}
}

// playerID extracts the resolved player id placed in the context by the JWT
// middleware.
func playerID(c *gin.Context) (string, bool) {
	v, ok := c.Get("player_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

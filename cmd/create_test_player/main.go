package main

import (
	"context"
	"log"
	"os"

	"farm_webapp/internal/db"
	"farm_webapp/internal/domain"
	"farm_webapp/internal/repository"
	"farm_webapp/internal/service"

	"github.com/google/uuid"
)

// Seeds an anonymous test player and prints a session token usable against
// /api/v1/farm and /ws.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewPlayerRepository(pool)
	ctx := context.Background()

	playerID := os.Getenv("TEST_PLAYER_ID")
	if playerID == "" {
		playerID = uuid.NewString()
	}

	p, err := repo.Ensure(ctx, domain.NewPlayer(playerID, domain.SourceAnonymous))
	if err != nil {
		log.Fatalf("ensure player failed: %v", err)
	}
	log.Printf("player ready id=%s silver=%d gold=%d\n", p.PlayerID, p.Silver, p.Gold)

	service.InitJWT()
	token, err := service.GenerateSessionToken(p.PlayerID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}

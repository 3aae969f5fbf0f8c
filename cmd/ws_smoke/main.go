package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"farm_webapp/internal/db"
	"farm_webapp/internal/domain"
	"farm_webapp/internal/repository"
	"farm_webapp/internal/service"
)

// Connects to a running server and watches a few farm state frames arrive
// over the WebSocket push channel.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewPlayerRepository(pool)
	ctx := context.Background()

	p, err := repo.Ensure(ctx, domain.NewPlayer(uuid.NewString(), domain.SourceAnonymous))
	if err != nil {
		log.Fatalf("ensure player: %v", err)
	}

	service.InitJWT()
	token, err := service.GenerateSessionToken(p.PlayerID)
	if err != nil {
		log.Fatalf("gen token: %v", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 5; i++ {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read frame %d: %v", i, err)
		}
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			log.Fatalf("frame %d is not JSON: %v", i, err)
		}
		log.Printf("frame %d: silver=%v gold=%v", i, obj["silver"], obj["gold"])
	}

	log.Println("smoke test finished")
}

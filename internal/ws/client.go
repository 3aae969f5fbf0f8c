package ws

import (
	"time"

	"farm_webapp/internal/farm"
	"farm_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client streams the farm display state over one websocket connection. The
// engine's tick loop produces frames; the client only forwards them, so a
// disconnect never touches game state.
type Client struct {
	playerID string
	conn     *websocket.Conn
	engine   *farm.Engine

	frames chan farm.DisplayState
	done   chan struct{}
}

func NewClient(playerID string, conn *websocket.Conn, engine *farm.Engine) *Client {
	return &Client{
		playerID: playerID,
		conn:     conn,
		engine:   engine,
		frames:   make(chan farm.DisplayState, 8),
		done:     make(chan struct{}),
	}
}

// Run subscribes to engine ticks and pumps frames until either side closes.
// It blocks until the connection is torn down.
func (c *Client) Run() {
	c.engine.Subscribe(c.frames)
	defer func() {
		c.engine.Unsubscribe(c.frames)
		c.conn.Close()
	}()

	go c.readPump()

	// immediate frame so the client renders without waiting a full tick
	if err := c.writeFrame(c.engine.DisplayState()); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case state := <-c.frames:
			if err := c.writeFrame(state); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeFrame(state farm.DisplayState) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(state)
}

// readPump drains the connection. Inbound payloads carry no gameplay; the
// read loop exists to observe pongs and closure.
func (c *Client) readPump() {
	defer close(c.done)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read closed", "player_id", c.playerID, "error", err)
			}
			return
		}
	}
}

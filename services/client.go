package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// Client is one websocket connection inside a stake room.
type Client struct {
	tid   int64
	stake int
	conn  *websocket.Conn
	svc   *Service
	send  chan []byte
	once  sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

func (c *Client) reply(ev Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.svc.hub.remove(c.stake, c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[client %d] disconnected", c.tid)
			} else {
				logger.Debugf("[client %d] read error: %v", c.tid, err)
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[client %d] recovered from panic: %v", c.tid, r)
		}
	}()

	var data struct {
		Action string `json:"action"`
		Slot   int    `json:"slot"`
		Picks  []int  `json:"picks"`
	}
	if err := json.Unmarshal(msg, &data); err != nil {
		logger.Debugf("[client %d] invalid message: %v", c.tid, err)
		return
	}

	ctx := context.Background()
	switch data.Action {
	case "ping":
		// Websocket pings count as presence too.
		g, err := c.svc.ActiveGame(ctx, c.stake)
		if err == nil {
			now := c.svc.clock.Now().UnixMilli()
			_ = cache.SetInt64(ctx, c.svc.cache, heartbeatKey(g.ID, c.tid), now, heartbeatTTL)
			_ = cache.SetInt64(ctx, c.svc.cache, seenKey(c.tid), now, seenTTL)
		}
		c.reply(Event{"type": "pong", "server_time": c.svc.clock.Now().UnixMilli()})
	case "claim_bingo":
		result, err := c.svc.Claim(ctx, c.tid, c.stake, data.Slot, data.Picks)
		if err != nil {
			c.reply(Event{"type": "claim_result", "ok": false, "error": err.Error()})
			return
		}
		c.reply(Event{
			"type":         "claim_result",
			"ok":           true,
			"won":          result.Won,
			"disqualified": result.Disqualified,
			"reason":       result.Reason,
			"payout":       result.Payout,
		})
	default:
		logger.Debugf("[client %d] unknown action: %q", c.tid, data.Action)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[client %d] write error: %v", c.tid, err)
			return
		}
	}
}

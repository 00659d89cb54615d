package services

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/habeshagames/bingo-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket joins a client to a stake room. The socket is push
// and claims only; authoritative state still comes from polling.
func (s *Service) HandleWebSocket(c *gin.Context) {
	stake, _ := strconv.Atoi(c.Param("stake"))
	if !s.cfg.ValidStake(stake) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown stake"})
		return
	}

	tid, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil || tid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id required"})
		return
	}
	player, err := s.GetOrCreatePlayer(c.Request.Context(), tid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "player lookup failed"})
		return
	}
	if player.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "banned"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("ws upgrade: %v", err)
		return
	}

	client := &Client{
		tid:   tid,
		stake: stake,
		conn:  conn,
		svc:   s,
		send:  make(chan []byte, 32),
	}
	s.hub.add(stake, client)
	logger.Debugf("ws client %d joined stake %d room", tid, stake)

	go client.writePump()
	go client.readPump()
}

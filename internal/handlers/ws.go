package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/giftnest-dev/giftnest/internal/events"
	"github.com/giftnest-dev/giftnest/internal/types"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WSHandler streams the family activity feed over a websocket. Each
// connection subscribes to the caller's family on the events hub;
// reservation events never reach the item's owner because the hub routes
// them around that user.
type WSHandler struct {
	Hub *events.Hub
	Log *logrus.Logger
}

func (h *WSHandler) Feed(ctx *gin.Context) {
	userID, familyID, ok := callerAndFamily(ctx)
	if !ok {
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	feed, cancel := h.Hub.Subscribe(familyID, userID)

	defer func() {
		cancel()
		conn.Close()
		h.Log.WithField("family_id", familyID).Debug("feed connection closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		return
	}

	// Reader goroutine: the client sends nothing meaningful, but reads keep
	// pong handling alive and detect the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.Log.WithError(err).Debug("feed read error")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, open := <-feed:
			if !open {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

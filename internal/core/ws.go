package core

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MuhammedFaaik/f66/internal/dao"
	"github.com/MuhammedFaaik/f66/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const wsReadDeadline = 60 * time.Second

// TokenVerifier turns a bearer token into a verified player id. Identity is
// established before registration; the core never re-checks credentials.
type TokenVerifier func(token string) (int64, error)

func HandleWebSocket(m *Manager, verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchID := c.Query("match_id")
		ticket := c.Query("ticket")
		token := c.Query("token")
		if matchID == "" || ticket == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id, ticket and token required"})
			return
		}

		uid, err := verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// The ticket was minted by the lobby on create/join; check it
		// against Redis before upgrading.
		if ok, err := dao.ValidateRoomTicket(context.Background(), matchID, ticket); err != nil {
			log.Println("redis error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		} else if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid room ticket"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("Upgrade failed:", err)
			return
		}

		conn := NewWebSocketConn(ws, m.tun.SendQueueSize)
		connID := uuid.New().String()
		if err := m.RegisterConnection(connID, uid, matchID, conn); err != nil {
			sendError(conn, err)
			conn.Close()
			return
		}
		defer m.RemoveConnection(connID)

		// Keepalive pings come from the conn's write pump; only the pong
		// side lives here, on the read path.
		ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
		ws.SetPongHandler(func(string) error {
			ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
			return nil
		})

		messageChan := make(chan []byte)
		doneChan := make(chan struct{})
		quit := make(chan struct{})
		defer close(quit)

		go func() {
			defer close(doneChan)
			for {
				_, data, err := ws.ReadMessage()
				if err != nil {
					return
				}
				select {
				case messageChan <- data:
				case <-quit:
					return
				}
			}
		}()

		for {
			select {
			case data := <-messageChan:
				ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
				if err := m.RouteInput(connID, data); err != nil {
					// The offender gets an explicit rejection; nobody
					// else is disturbed.
					sendError(conn, err)
				}

			case <-doneChan:
				return
			}
		}
	}
}

func sendError(conn Conn, err error) {
	code := "rejected"
	switch {
	case errors.Is(err, ErrMalformedInput):
		code = "malformed_input"
	case errors.Is(err, ErrMatchEnded):
		code = "match_ended"
	case errors.Is(err, ErrAlreadyInRoom):
		code = "already_in_room"
	case errors.Is(err, ErrNotInMatch):
		code = "not_in_match"
	case errors.Is(err, ErrInputQueueFull):
		code = "throttled"
	}
	if data, encErr := protocol.Encode(protocol.MsgError, protocol.ErrorMsg{
		Code:    code,
		Message: err.Error(),
	}); encErr == nil {
		conn.Send(data)
	}
}

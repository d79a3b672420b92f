package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/hub"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type clientMessage struct {
	Type   string `json:"type"`
	TeamID uint   `json:"team_id"`
}

// WebSocket authenticates the handshake, upgrades the connection and
// then serves team:join / team:leave requests until the client goes
// away. Task events are pushed by the hub into whichever rooms the
// connection has joined.
func WebSocket(c *gin.Context) {
	tokenString := c.Query("token")

	if tokenString == "" {
		tokenString = auth.ExtractBearer(c.GetHeader("Authorization"))
	}

	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, types.Failure("Authorization token is required", nil))
		return
	}

	userID, err := auth.VerifyJWT(tokenString)

	if err != nil {
		c.JSON(http.StatusUnauthorized, types.Failure("Invalid or expired token", nil))
		return
	}

	if _, err := store.FindUserByID(userID); err != nil {
		c.JSON(http.StatusUnauthorized, types.Failure("Invalid or expired token", nil))
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	connection := hub.NewConnection(userID, conn)

	defer func() {
		hub.Default().Disconnect(connection)
		conn.Close()

		log.Printf("WebSocket connection %s closed for user %d", connection.ID, userID)
	}()

	if err := connection.Send(map[string]interface{}{
		"type":    "connected",
		"message": "WebSocket connection established",
	}); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		// Send pings periodically
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for connection %s: %v", connection.ID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for connection %s: %v", connection.ID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for connection %s: %v", connection.ID, err)
			break
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for connection %s: %v", connection.ID, err)
			}
			break
		}

		var msg clientMessage

		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Discarding malformed message from connection %s: %v", connection.ID, err)
			continue
		}

		handleClientMessage(connection, msg)
	}
}

func handleClientMessage(connection *hub.Connection, msg clientMessage) {
	switch msg.Type {
	case "team:join":
		// Same authorization path as HTTP requests: membership is
		// re-verified before the connection enters the room.
		if err := authz.RequireMember(msg.TeamID, connection.UserID); err != nil {
			if sendErr := connection.Send(map[string]interface{}{
				"type":    "team:join:error",
				"team_id": msg.TeamID,
				"error":   "You are not a member of this team",
			}); sendErr != nil {
				log.Printf("Failed to send join error to connection %s: %v", connection.ID, sendErr)
			}
			return
		}

		hub.Default().Join(msg.TeamID, connection)

		if err := connection.Send(map[string]interface{}{
			"type":    "team:join:success",
			"team_id": msg.TeamID,
		}); err != nil {
			log.Printf("Failed to send join success to connection %s: %v", connection.ID, err)
		}
	case "team:leave":
		hub.Default().Leave(msg.TeamID, connection)
	default:
		log.Printf("Unknown message type %q from connection %s", msg.Type, connection.ID)
	}
}

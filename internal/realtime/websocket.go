package realtime

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Serve registers the socket for userID, writes hub traffic to it and reads
// until the peer goes away. Inbound frames are keepalives only.
func Serve(hub *Hub, conn *websocket.Conn, userID uuid.UUID) {
	client := NewClient(userID)
	if !hub.RegisterClient(client) {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Warn().Err(err).Str("user_id", userID.String()).Msg("websocket write")
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Err(err).Str("user_id", userID.String()).Msg("websocket closed")
			break
		}
	}
	hub.UnregisterClient(client)
	<-done
}

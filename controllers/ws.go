package controllers

import (
	"log"
	"net/http"
	"strings"

	"JasaKita/middleware"
	"JasaKita/pkg/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

// ChatWS upgrades to a websocket and hands the connection to the hub.
// Browsers cannot set headers on the upgrade request, so the JWT travels
// in the ?token= query and goes through the same resolver as the
// Authorization header.
func ChatWS(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		userID, _, err := middleware.ResolveToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}

		// bound concurrent sessions per user
		release := middleware.AcquireUserSlot(userID)
		defer release()

		client := hub.NewClient(h, conn, userID)
		client.Serve()
	}
}

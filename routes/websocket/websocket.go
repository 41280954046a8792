package websocket

import (
	"JasaKita/controllers"
	"JasaKita/pkg/hub"

	"github.com/gin-gonic/gin"
)

func Register(r *gin.Engine, h *hub.Hub) {
	r.GET("/ws", controllers.ChatWS(h))
}

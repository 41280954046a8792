package conversation

import (
	"JasaKita/controllers"
	"JasaKita/middleware"
	svc "JasaKita/pkg/services"

	"github.com/gin-gonic/gin"
)

// Register registers conversation routes (protected). The :id param is the
// other user's id on the pair routes and the conversation id on the
// message routes. GET and POST on /conversations/:id are aliases; both
// get-or-create.
func Register(g *gin.RouterGroup, chat *svc.ChatService) {
	g.GET("/conversations", controllers.ListConversations(chat))
	g.GET("/conversations/:id", controllers.GetOrCreateConversation(chat))
	g.POST("/conversations/:id", controllers.GetOrCreateConversation(chat))
	g.GET("/conversations/:id/messages", controllers.ListMessages(chat))
	g.POST("/conversations/:id/messages", middleware.RateLimit(), controllers.SendMessage(chat))
}

// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"

	"mobility-service/internal/middleware"
	"mobility-service/internal/pkg/response"
	ws "mobility-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is not restricted; the partner token gates access.
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades an authenticated partner to a dashboard socket.
// Partner auth middleware runs before this and sets the identity keys.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	partnerID, ok := middleware.GetPartnerID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}
	partnerCode := c.GetString("partner_code")
	if partnerCode == "" {
		response.Unauthorized(c, "not authenticated")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.String("partner_id", partnerID), zap.String("ip", c.ClientIP()), zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, partnerID, partnerCode)
	client.Start()

	h.logger.Info("partner websocket connected",
		zap.String("partner_id", partnerID), zap.String("partner_code", partnerCode))
}

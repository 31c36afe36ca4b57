package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/app/models/dto"
)

// Handler upgrades HTTP requests to event subscriptions.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// CatalogFeed godoc
// @Summary Stream every catalog event
// @Description Upgrades to a WebSocket that receives reservations, payments and review decisions as they happen
// @Tags websocket
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /ws/catalog [get]
func (h *Handler) CatalogFeed(c *gin.Context) {
	h.serve(c, ChannelCatalog)
}

// ClassFeed godoc
// @Summary Stream the events of one class
// @Description Upgrades to a WebSocket that receives seat and review updates for a single class
// @Tags websocket
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse
// @Router /ws/classes/{id} [get]
func (h *Handler) ClassFeed(c *gin.Context) {
	h.serve(c, ClassChannel(c.Param("id")))
}

func (h *Handler) serve(c *gin.Context, channel string) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, dto.KindUnauthorized, "Authentication required"),
		))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("channel", channel).
			Str("email", email).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		email:   email,
		channel: channel,
		logger:  h.logger,
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

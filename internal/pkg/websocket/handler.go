package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
)

// Handler upgrades authenticated staff requests to the live feed
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
	}
}

// TopicsForRoles maps staff roles to the feed topics they may follow
func TopicsForRoles(roles []models.RoleType) []string {
	var smos, etour bool
	for _, role := range roles {
		switch role {
		case models.RoleAdministrator, models.RoleTeacher:
			smos = true
		case models.RoleAgencyOperator, models.RolePointOperator:
			etour = true
		}
	}

	var topics []string
	if smos {
		topics = append(topics, TopicSMOS)
	}
	if etour {
		topics = append(topics, TopicETour)
	}
	return topics
}

// HandleConnection establishes the feed connection. Auth middleware must run first.
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDValue, exists := c.Get("userID")
	userID, ok := userIDValue.(int64)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	rolesValue, _ := c.Get("roles")
	roles, _ := rolesValue.([]models.RoleType)
	topics := TopicsForRoles(roles)
	if len(topics) == 0 {
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "No staff feed available for your roles")))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, userID, topics, h.logger)
	if !h.hub.Subscribe(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Strs("topics", topics).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

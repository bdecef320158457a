package httpapi

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nmoreno/scrumpoker/internal/app"
	"github.com/nmoreno/scrumpoker/internal/domain"
)

type Handlers struct {
	svc *app.Service
}

func NewHandlers(svc *app.Service) *Handlers {
	return &Handlers{svc: svc}
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

type joinRoomRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
	IsObserver bool   `json:"is_observer"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}

	summary, err := h.svc.CreateRoom(req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListRooms())
}

func (h *Handlers) GetRoom(c *gin.Context) {
	summary, err := h.svc.GetRoom(c.Param("room_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	roomID := c.Param("room_id")

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid player_name"})
		return
	}

	result, err := h.svc.JoinRoom(roomID, req.PlayerName, req.IsObserver)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Remember the player in the cookie session so a returning browser can
	// recover its id without retyping the name.
	session := sessions.Default(c)
	session.Set(sessionKey(roomID), result.PlayerID)
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Str("module", "httpapi").Str("room_id", roomID).Msg("session save")
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handlers) DeleteRoom(c *gin.Context) {
	if err := h.svc.DeleteRoom(c.Param("room_id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// RoomSession returns the player id stored in the caller's session for
// this room, if that player still exists there.
func (h *Handlers) RoomSession(c *gin.Context) {
	roomID := c.Param("room_id")

	session := sessions.Default(c)
	playerID, ok := session.Get(sessionKey(roomID)).(string)
	if !ok || playerID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session for this room"})
		return
	}

	state, err := h.svc.Snapshot(roomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	for _, p := range state.Players {
		if p.ID == playerID {
			c.JSON(http.StatusOK, gin.H{"room_id": roomID, "player_id": playerID, "player_name": p.Name})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "player no longer in room"})
}

// ListScales exposes the predefined scale catalog.
func (h *Handlers) ListScales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": domain.DefaultScaleName,
		"scales":  domain.PredefinedScales,
	})
}

func sessionKey(roomID string) string { return "player:" + roomID }

// abortWithError maps the operation error kinds onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch app.KindOf(err) {
	case app.KindNotFound:
		status = http.StatusNotFound
	case app.KindUnauthorized:
		status = http.StatusForbidden
	case app.KindInvalid:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

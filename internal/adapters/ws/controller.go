// Package ws is the real-time boundary: one duplex websocket per player,
// inbound actions dispatched to the operation layer, room state fanned out
// after every successful mutation.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nmoreno/scrumpoker/internal/app"
	"github.com/nmoreno/scrumpoker/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	svc *app.Service
	reg *Registry
	cfg *config.Config
}

func NewController(svc *app.Service, reg *Registry, cfg *config.Config) *Controller {
	return &Controller{svc: svc, reg: reg, cfg: cfg}
}

// roomUpdate is the envelope of every broadcast.
type roomUpdate struct {
	Type string         `json:"type"`
	Data *app.RoomState `json:"data"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HandleSocket serves GET /ws/:room_id/:player_id. Unknown rooms or
// players close the socket with a policy violation before any state is
// exchanged.
func (ctl *Controller) HandleSocket(c *gin.Context) {
	roomID := c.Param("room_id")
	playerID := c.Param("player_id")

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.controller").Msg("upgrade")
		return
	}

	state, err := ctl.svc.Connect(roomID, playerID)
	if err != nil {
		reason := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = sock.WriteControl(websocket.CloseMessage, reason, time.Now().Add(time.Second))
		_ = sock.Close()
		return
	}

	conn := newWSConn(sock)
	ctl.reg.Register(roomID, playerID, conn)
	go conn.writePump(ctl.cfg.PingPeriod)

	log.Info().Str("module", "ws.controller").Str("room_id", roomID).Str("player_id", playerID).Msg("player connected")
	ctl.broadcast(roomID, state)

	ctl.readPump(roomID, playerID, conn)
}

func (ctl *Controller) readPump(roomID, playerID string, conn *wsConn) {
	defer func() {
		conn.Close()
		ctl.reg.Unregister(roomID, playerID, conn)
		if state, err := ctl.svc.Disconnect(roomID, playerID); err == nil {
			ctl.broadcast(roomID, state)
		}
		log.Info().Str("module", "ws.controller").Str("room_id", roomID).Str("player_id", playerID).Msg("player disconnected")
	}()

	conn.conn.SetReadLimit(ctl.cfg.ReadLimit)
	pongWait := ctl.cfg.PingPeriod * 10 / 9
	_ = conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			return
		}
		ctl.handleMessage(roomID, playerID, conn, data)
	}
}

func (ctl *Controller) handleMessage(roomID, playerID string, conn *wsConn, data []byte) {
	var env struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		ctl.sendError(conn, "bad payload")
		return
	}

	var state *app.RoomState
	var err error

	switch env.Action {
	case "vote":
		var p struct {
			Vote *string `json:"vote"`
		}
		if jsonErr := json.Unmarshal(data, &p); jsonErr != nil {
			ctl.sendError(conn, "bad payload")
			return
		}
		token := ""
		if p.Vote != nil {
			token = *p.Vote
		}
		state, err = ctl.svc.CastVote(roomID, playerID, token)

	case "reveal":
		state, err = ctl.svc.RevealVotes(roomID, playerID)

	case "reset":
		state, err = ctl.svc.ResetVotes(roomID, playerID)

	case "set_story":
		var p struct {
			StoryName string `json:"story_name"`
		}
		if jsonErr := json.Unmarshal(data, &p); jsonErr != nil {
			ctl.sendError(conn, "bad payload")
			return
		}
		state, err = ctl.svc.SetStory(roomID, p.StoryName)

	case "toggle_voting_mode":
		state, err = ctl.svc.ToggleVotingMode(roomID, playerID)

	case "change_scale":
		var p struct {
			Scale string `json:"scale"`
		}
		if jsonErr := json.Unmarshal(data, &p); jsonErr != nil || p.Scale == "" {
			ctl.sendError(conn, "bad payload")
			return
		}
		state, err = ctl.svc.ChangeScale(roomID, playerID, p.Scale)

	case "set_custom_scale":
		var p struct {
			Values []string `json:"values"`
		}
		if jsonErr := json.Unmarshal(data, &p); jsonErr != nil {
			ctl.sendError(conn, "bad payload")
			return
		}
		state, err = ctl.svc.SetCustomScale(roomID, playerID, p.Values)

	default:
		log.Warn().Str("module", "ws.controller").Str("action", env.Action).Msg("unknown action")
		return
	}

	if err != nil {
		// Domain failures go back to the offending player only; nothing
		// was mutated, so nothing is broadcast.
		ctl.sendError(conn, err.Error())
		return
	}
	ctl.broadcast(roomID, state)
}

func (ctl *Controller) broadcast(roomID string, state *app.RoomState) {
	ctl.reg.Broadcast(roomID, roomUpdate{Type: "room_update", Data: state})
}

func (ctl *Controller) sendError(conn *wsConn, message string) {
	data, err := json.Marshal(errorMessage{Type: "error", Message: message})
	if err != nil {
		return
	}
	_ = conn.TrySend(data)
}

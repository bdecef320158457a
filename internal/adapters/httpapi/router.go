// Package httpapi wires the REST surface and the websocket endpoint into a
// gin engine.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nmoreno/scrumpoker/internal/adapters/ws"
	"github.com/nmoreno/scrumpoker/internal/app"
	"github.com/nmoreno/scrumpoker/internal/config"
)

// ClientTokenMiddleware tags every browser with a stable token cookie,
// used as the rate limiting key.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func rateLimitMiddleware(limiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.GetString("client_token")) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, svc *app.Service, wsCtl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ScrumPokerSession", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "httpapi").Str("static", cfg.StaticPath).Msg("router setup")

	handlers := NewHandlers(svc)
	limiter := NewClientRateLimiter(10, time.Minute)

	api := r.Group("/api")
	api.POST("/rooms", rateLimitMiddleware(limiter), handlers.CreateRoom)
	api.GET("/rooms", handlers.ListRooms)
	api.GET("/rooms/:room_id", handlers.GetRoom)
	api.POST("/rooms/:room_id/join", rateLimitMiddleware(limiter), handlers.JoinRoom)
	api.DELETE("/rooms/:room_id", handlers.DeleteRoom)
	api.GET("/rooms/:room_id/session", handlers.RoomSession)
	api.GET("/scales", handlers.ListScales)

	r.GET("/ws/:room_id/:player_id", wsCtl.HandleSocket)

	return r
}

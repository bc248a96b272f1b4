package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/roomcast/internal/middleware"
	"github.com/lalith-99/roomcast/internal/repository"
	"github.com/lalith-99/roomcast/internal/store"
	"go.uber.org/zap"
)

// Deps is everything the router needs. Handlers get interfaces, never
// concrete stores, so tests can swap in whatever they like.
type Deps struct {
	Store    store.Store
	Messages repository.MessageRepository
	Users    repository.UserRepository
	Rooms    repository.RoomRepository
	Accounts repository.AccountRepository
	Sweeper  Maintenance
	Logger   *zap.Logger
}

// NewRouter wires every endpoint. All state lives behind the repositories;
// each request is independent, which is what lets the polling contract stay
// stateless.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger), gin.Recovery())

	msg := NewMessageHandler(d.Messages, d.Rooms, d.Logger)
	rooms := NewRoomHandler(d.Rooms, d.Logger)
	users := NewUserHandler(d.Users, d.Logger)
	poll := NewPollHandler(d.Messages, d.Users, d.Rooms, d.Sweeper, msg, d.Logger)
	auth := NewAuthHandler(d.Accounts, d.Logger)
	events := NewSSEHandler(d.Store, d.Logger)

	// Health check stays public and unauthenticated so load balancers can
	// reach it.
	r.GET("/healthz", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/rooms", rooms.List)
		apiGroup.POST("/rooms", rooms.Create)
		apiGroup.PUT("/rooms", rooms.Update)
		apiGroup.DELETE("/rooms", rooms.Delete)

		apiGroup.GET("/messages", msg.List)
		apiGroup.POST("/messages", msg.Create)

		apiGroup.GET("/users", users.List)
		apiGroup.POST("/users", users.Upsert)
		apiGroup.DELETE("/users", users.Delete)

		apiGroup.GET("/poll", poll.Get)
		apiGroup.POST("/poll", poll.Post)

		apiGroup.GET("/auth", auth.Check)
		apiGroup.POST("/auth", auth.Register)

		apiGroup.GET("/sse", events.Stream)
	}

	return r
}

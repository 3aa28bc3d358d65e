package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"codepair/internal/gateway"
	"codepair/internal/registry"
)

// Handler wires the HTTP routes to the session registry and the
// websocket gateway.
type Handler struct {
	store   *registry.Store
	gateway *gateway.Gateway
	log     *zap.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(store *registry.Store, gw *gateway.Gateway, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:   store,
		gateway: gw,
		log:     log,
	}
}

// RegisterRoutes attaches all HTTP routes to the router. apiMiddleware
// applies to the /api group only, the websocket and operational
// endpoints stay outside it.
func (h *Handler) RegisterRoutes(router *gin.Engine, apiMiddleware ...gin.HandlerFunc) {
	router.GET("/health", h.health)
	router.GET("/ws", h.gateway.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(apiMiddleware...)
	api.POST("/sessions", h.createSession)
	api.GET("/sessions/:id", h.getSession)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createSession(c *gin.Context) {
	session := h.store.Create(uuid.NewString())
	h.log.Info("session created", zap.String("session_id", session.ID))
	c.JSON(http.StatusCreated, gin.H{
		"id":      session.ID,
		"message": "Session created successfully",
	})
}

func (h *Handler) getSession(c *gin.Context) {
	session, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       session.ID,
		"code":     session.Code,
		"language": session.Language,
	})
}

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codepair/internal/metrics"
	"codepair/internal/models"
	"codepair/internal/presence"
	"codepair/internal/registry"
)

// Config carries the gateway's dependencies.
type Config struct {
	Store          *registry.Store
	Presence       *presence.Tracker
	AllowedOrigins []string
	Logger         *zap.Logger
}

type handlerFunc func(*client, json.RawMessage)

// Gateway terminates websocket connections and speaks the room-scoped
// event protocol over them. Every connected client belongs to at most
// one session room at a time.
type Gateway struct {
	store    *registry.Store
	presence *presence.Tracker
	log      *zap.Logger
	rooms    *roomSet
	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(cfg Config) *Gateway {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		store:    cfg.Store,
		presence: cfg.Presence,
		log:      log,
		rooms:    newRoomSet(),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	g.handlers = map[string]handlerFunc{
		EventJoinSession:    g.handleJoinSession,
		EventCodeChange:     g.handleCodeChange,
		EventLanguageChange: g.handleLanguageChange,
		EventOutputChange:   g.handleOutputChange,
		EventActivityChange: g.handleActivityChange,
	}
	return g
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from an allowed origin. "*" allows all.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if candidate == "*" || strings.EqualFold(candidate, origin) {
				return true
			}
		}
		return false
	}
}

// Handler upgrades the request and runs the connection's pumps until it
// drops.
func (g *Gateway) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		conn, err := g.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			g.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		c := newClient(g, uuid.NewString(), conn)
		metrics.ConnectionsActive.Inc()
		g.log.Info("client connected", zap.String("connection_id", c.id))
		go c.writePump()
		go c.readPump()
	}
}

// dispatch routes one inbound frame. Frames that do not decode and
// events without a handler are dropped without a reply so a confused
// client cannot take the connection down.
func (g *Gateway) dispatch(c *client, raw []byte) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		g.log.Debug("undecodable frame",
			zap.String("connection_id", c.id), zap.Error(err))
		return
	}
	handler, ok := g.handlers[f.Event]
	if !ok {
		g.log.Debug("unknown event",
			zap.String("connection_id", c.id), zap.String("event", f.Event))
		return
	}
	metrics.EventsTotal.WithLabelValues(f.Event).Inc()
	handler(c, f.Data)
}

func (g *Gateway) handleJoinSession(c *client, data json.RawMessage) {
	var p joinSessionData
	if err := unmarshalData(data, &p); err != nil || p.SessionID == "" {
		g.sendError(c, errSessionIDRequired)
		return
	}
	session, ok := g.store.Get(p.SessionID)
	if !ok {
		g.sendError(c, errSessionNotFound)
		return
	}
	if previous := c.setRoom(p.SessionID); previous != "" {
		g.leaveRoom(c, previous)
	}
	g.rooms.join(p.SessionID, c)
	snap := g.presence.Join(p.SessionID, c.id)
	g.send(c, EventSessionState, sessionStateData{
		Code:     session.Code,
		Language: session.Language,
	})
	g.broadcast(p.SessionID, EventPresenceUpdate, snap, nil)
	g.log.Debug("client joined session",
		zap.String("connection_id", c.id),
		zap.String("session_id", p.SessionID))
}

func (g *Gateway) handleCodeChange(c *client, data json.RawMessage) {
	var p codeChangeData
	if err := unmarshalData(data, &p); err != nil || p.SessionID == "" || p.Code == nil {
		g.sendError(c, errInvalidCodeChange)
		return
	}
	if err := g.store.UpdateCode(p.SessionID, *p.Code); err != nil {
		g.sendError(c, errCodeUpdateFailed)
		return
	}
	g.broadcast(p.SessionID, EventCodeUpdate, codeUpdateData{Code: *p.Code}, c)
}

func (g *Gateway) handleLanguageChange(c *client, data json.RawMessage) {
	var p languageChangeData
	if err := unmarshalData(data, &p); err != nil || p.SessionID == "" || p.Language == nil {
		g.sendError(c, errInvalidLangChange)
		return
	}
	lang := models.Language(*p.Language)
	if !lang.Valid() {
		g.sendError(c, errInvalidLangValue)
		return
	}
	if err := g.store.UpdateLanguage(p.SessionID, lang); err != nil {
		g.sendError(c, errLangUpdateFailed)
		return
	}
	g.broadcast(p.SessionID, EventLanguageUpdate, languageUpdateData{Language: lang}, c)
}

// handleOutputChange relays run results without touching the registry;
// output is ephemeral and never stored.
func (g *Gateway) handleOutputChange(c *client, data json.RawMessage) {
	var p outputChangeData
	if err := unmarshalData(data, &p); err != nil || p.SessionID == "" {
		g.sendError(c, errInvalidOutputChange)
		return
	}
	update := outputUpdateData{Error: p.Error}
	if p.Output != nil {
		update.Output = *p.Output
	}
	if p.IsRunning != nil {
		update.IsRunning = *p.IsRunning
	}
	g.broadcast(p.SessionID, EventOutputUpdate, update, c)
}

// handleActivityChange flips the sender's active flag. Malformed or
// misdirected toggles are dropped silently, there is no error reply on
// this path.
func (g *Gateway) handleActivityChange(c *client, data json.RawMessage) {
	var p activityChangeData
	if err := unmarshalData(data, &p); err != nil || p.SessionID == "" || p.IsActive == nil {
		return
	}
	snap, ok := g.presence.SetActive(p.SessionID, c.id, *p.IsActive)
	if !ok {
		return
	}
	g.broadcast(p.SessionID, EventPresenceUpdate, snap, nil)
}

// leaveRoom removes c from a room and tells whoever is left.
func (g *Gateway) leaveRoom(c *client, room string) {
	g.rooms.leave(room, c)
	if snap, ok := g.presence.Leave(room, c.id); ok {
		g.broadcast(room, EventPresenceUpdate, snap, nil)
	}
}

// dropClient runs the disconnect sequence once the read pump exits:
// leave the current room, then shut the write pump down.
func (g *Gateway) dropClient(c *client) {
	if room := c.setRoom(""); room != "" {
		g.leaveRoom(c, room)
	}
	close(c.send)
	metrics.ConnectionsActive.Dec()
	g.log.Info("client disconnected", zap.String("connection_id", c.id))
}

func (g *Gateway) send(c *client, event string, data any) {
	buf, err := encodeFrame(event, data)
	if err != nil {
		g.log.Error("encode frame", zap.String("event", event), zap.Error(err))
		return
	}
	c.enqueue(buf)
}

func (g *Gateway) sendError(c *client, message string) {
	g.send(c, EventError, errorData{Message: message})
}

func (g *Gateway) broadcast(room, event string, data any, exclude *client) {
	buf, err := encodeFrame(event, data)
	if err != nil {
		g.log.Error("encode frame", zap.String("event", event), zap.Error(err))
		return
	}
	g.rooms.broadcast(room, buf, exclude)
}

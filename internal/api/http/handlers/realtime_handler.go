package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/chat"
)

// RealtimeHandler upgrades /realtime to a chat session.
type RealtimeHandler struct {
	ctx    context.Context
	deps   chat.SessionDependencies
	logger *zap.Logger
}

// NewRealtimeHandler binds sessions to ctx; cancelling it ends every open
// socket.
func NewRealtimeHandler(ctx context.Context, deps chat.SessionDependencies, logger *zap.Logger) *RealtimeHandler {
	if deps.Presence == nil {
		deps.Presence = chat.NewPresenceRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	return &RealtimeHandler{ctx: ctx, deps: deps, logger: logger}
}

// Upgrade rejects plain HTTP requests. It runs after the auth middleware.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Serve returns the websocket handler.
func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		principal, ok := auth.PrincipalFromLocals(conn.Locals)
		if !ok || principal.Profile == nil {
			_ = conn.Close()
			return
		}
		session := chat.NewSession(conn, principal.Profile, h.deps)
		if err := session.Run(h.ctx); err != nil {
			h.logger.Warn("realtime session ended", zap.String("profile_id", principal.Profile.ID), zap.Error(err))
		}
	})
}

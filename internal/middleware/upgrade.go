package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// NewUpgradeMiddleware lets only WebSocket handshakes through to the bridge
// routes and marks them for the websocket handler.
func (m *middleware) NewUpgradeMiddleware(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		m.log.WithFields(logrus.Fields{
			"path":       ctx.Path(),
			"request_id": m.GetRequestID(ctx),
		}).Debug("Rejected non-websocket request on bridge route")
		return fiber.ErrUpgradeRequired
	}

	ctx.Locals("allowed", true)
	ctx.Locals("request_id", m.GetRequestID(ctx))
	return ctx.Next()
}

package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"packtrail/internal/middleware"
	"packtrail/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	wsTicketPrefix = "ws_ticket:"
	wsTicketTTL    = time.Minute
)

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set an
// Authorization header on a websocket handshake, so an authenticated caller
// trades their bearer token for a short-lived single-use ticket passed as a
// query parameter instead.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUpstreamError("Ticket issuance unavailable", nil))
	}

	userID := c.Locals("userID").(uint)
	ticket := uuid.NewString()
	key := wsTicketPrefix + ticket

	if err := s.redis.Set(c.Context(), key, strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// wsTicketAuth authenticates the websocket handshake with a single-use
// ticket. GETDEL consumes the ticket atomically so a replayed handshake
// fails even when two arrive at once.
func (s *Server) wsTicketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ticket := c.Query("ticket")
		if ticket == "" || s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError())
		}

		userIDStr, err := s.redis.GetDel(c.Context(), wsTicketPrefix+ticket).Result()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError())
		}
		userID, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError())
		}

		// The live-count feed rolls out behind a flag.
		if !s.featureFlags.Enabled("live_count", uint(userID)) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewNotAuthorizedError())
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID)))

		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}
}

// LiveCountHandler handles GET /api/ws: the live-user-count feed. The client
// receives the current count on connect and a fresh count every time a user
// comes online or goes offline anywhere in the cluster.
func (s *Server) LiveCountHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage,
				[]byte(fmt.Sprintf(`{"error":%q}`, err.Error())))
			_ = conn.Close()
			return
		}

		// Seed the new client with the current count right away.
		client.TrySend(s.hub.CountMessage(context.Background()))

		go client.WritePump()

		// Read pump runs in the handler goroutine; it unregisters on exit.
		client.ReadPump()
	})
}

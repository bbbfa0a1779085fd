package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"aqar-chatbot/models"
	"aqar-chatbot/services"
)

// HandleChat processes one conversational turn
func HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message cannot be empty",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		slog.Info("Generated new session", "sessionID", sessionID)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 90*time.Second)
	defer cancel()

	response, err := services.ProcessMessage(ctx, req.Message, sessionID)
	if err != nil {
		slog.Error("Failed to process message", "error", err, "sessionID", sessionID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to process message",
			"details": err.Error(),
		})
	}

	return c.JSON(response)
}

// HandleClearSession drops a session's memory
func HandleClearSession(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	cleared := services.GetSessionStore().Clear(req.SessionID)
	return c.JSON(fiber.Map{
		"cleared":    cleared,
		"session_id": req.SessionID,
	})
}

// HandleSessionHistory returns the persisted turns of a session, newest first
func HandleSessionHistory(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session id is required",
		})
	}

	limit := int64(c.QueryInt("limit", 20))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	turns, err := services.GetRecentTurns(ctx, sessionID, limit)
	if err != nil {
		slog.Error("Failed to load session history", "error", err, "sessionID", sessionID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"turns":      turns,
		"count":      len(turns),
	})
}

// HandleTestDB verifies the MySQL connection and reports the inventory size
func HandleTestDB(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	count, err := services.TestDBConnection(ctx)
	if err != nil {
		slog.Error("Database test failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":     "ok",
		"unit_count": count,
	})
}

// HandleHealth is the liveness probe
func HandleHealth(c *fiber.Ctx) error {
	hits, misses := services.GetResponseCache().Stats()
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"sessions":     services.GetSessionStore().Count(),
		"cache_size":   services.GetResponseCache().Len(),
		"cache_hits":   hits,
		"cache_misses": misses,
	})
}

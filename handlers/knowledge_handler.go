package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"aqar-chatbot/models"
	"aqar-chatbot/services"
)

// HandleKnowledgeUpload chunks, embeds and stores an admin-supplied document
func HandleKnowledgeUpload(c *fiber.Ctx) error {
	var req models.KnowledgeUploadRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "source and content are required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 120*time.Second)
	defer cancel()

	chunks, err := services.StoreKnowledge(ctx, req.Source, req.Content)
	if err != nil {
		slog.Error("Failed to store knowledge document", "error", err, "source", req.Source)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to store document",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Document stored successfully",
		"source":  req.Source,
		"chunks":  chunks,
	})
}

// HandleKnowledgeList returns the sources currently in the knowledge base
func HandleKnowledgeList(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	sources, err := services.ListKnowledgeSources(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to list documents",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"sources": sources,
		"count":   len(sources),
	})
}

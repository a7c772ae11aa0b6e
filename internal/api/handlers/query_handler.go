package handlers

import (
	"podatkobot/internal/dto"
	"podatkobot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QueryHandler struct {
	router *service.QueryRouter
	logger *zap.Logger
}

func NewQueryHandler(router *service.QueryRouter, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		router: router,
		logger: logger,
	}
}

// ProcessQuery godoc
// @Summary Ask the tax assistant a question
// @Description Classifies the query and answers it, grounding tax questions in the indexed tax code
// @Tags query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "User query"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} map[string]string
// @Router /query [post]
func (h *QueryHandler) ProcessQuery(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	}

	sessionID := sessionIDFrom(req.Metadata)

	answer := h.router.Handle(c.Context(), sessionID, req.Text)

	h.logger.Info("Query processed",
		zap.String("session_id", sessionID),
		zap.Int("answer_length", len(answer)),
	)

	return c.JSON(dto.QueryResponse{
		Answer:   answer,
		Sources:  []string{},
		Metadata: req.Metadata,
	})
}

// sessionIDFrom reads the session from request metadata, minting a fresh one
// when the client did not supply any.
func sessionIDFrom(metadata map[string]any) string {
	if metadata != nil {
		if v, ok := metadata["session_id"].(string); ok && v != "" {
			return v
		}
	}
	return uuid.New().String()
}

package handlers

import (
	"podatkobot/internal/dto"
	"podatkobot/internal/repository"
	"podatkobot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	ingest *service.IngestService
	repo   *repository.ChunkRepository
	logger *zap.Logger
}

func NewAdminHandler(ingest *service.IngestService, repo *repository.ChunkRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		ingest: ingest,
		repo:   repo,
		logger: logger,
	}
}

// IngestDocuments godoc
// @Summary Ingest tax code PDFs into the index
// @Description Extracts, chunks, embeds and indexes the given PDF files or directories
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.IngestRequest true "PDF paths"
// @Security Bearer
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/admin/ingest [post]
func (h *AdminHandler) IngestDocuments(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Paths) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one path is required",
		})
	}

	datasetName := req.DatasetName
	if datasetName == "" {
		datasetName = "tax_code"
	}

	indexed, err := h.ingest.Ingest(c.Context(), req.Paths, datasetName)
	if err != nil {
		h.logger.Error("Ingestion failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(dto.IngestResponse{ChunksIndexed: indexed})
}

// Health godoc
// @Summary Service health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /healthz [get]
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	count, err := h.repo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "index unavailable",
		})
	}
	return c.JSON(dto.HealthResponse{
		Status:        "ok",
		IndexedChunks: count,
	})
}

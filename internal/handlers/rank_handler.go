package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-ranker/internal/models"
	"alfredoptarigan/cv-ranker/internal/services"
)

type RankHandler struct {
	ranker      services.RankerService
	extractor   services.ExtractorService
	logger      *zap.Logger
	maxFileSize int64
}

func NewRankHandler(
	ranker services.RankerService,
	extractor services.ExtractorService,
	logger *zap.Logger,
	maxFileSize int64,
) *RankHandler {
	return &RankHandler{
		ranker:      ranker,
		extractor:   extractor,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// HandleRank handles POST /api/v1/rank. The request is a multipart form with
// one or more "files" attachments plus comma-delimited "requiredKeywords"
// and optional "optionalKeywords" fields. The response carries one result
// per file, sorted by score descending.
func (h *RankHandler) HandleRank(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "failed to parse multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "files and required keywords are required",
		})
	}

	requiredKeywords := formValue(form, "requiredKeywords")
	optionalKeywords := formValue(form, "optionalKeywords")

	docs := make([]models.UploadedDocument, 0, len(files))
	for _, file := range files {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: fmt.Sprintf("file %s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}

		if !h.extractor.Supports(services.FileExt(file.Filename)) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: fmt.Sprintf("unsupported file type: %s", file.Filename),
			})
		}

		content, err := readFile(file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
				Error: fmt.Sprintf("failed to read uploaded file %s", file.Filename),
			})
		}

		docs = append(docs, models.UploadedDocument{
			Name:    file.Filename,
			Content: content,
		})
	}

	results, err := h.ranker.Rank(c.Context(), docs, requiredKeywords, optionalKeywords)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: validationErr.Message,
			})
		}

		h.logger.Error("batch ranking failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "failed to process CVs",
		})
	}

	return c.JSON(models.RankResponse{
		Results: services.SortByScore(results),
	})
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return content, nil
}

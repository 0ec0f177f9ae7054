package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-ranker/internal/logger"
	"alfredoptarigan/cv-ranker/internal/models"
)

// RankerService fans the per-document pipelines out, waits for all of them,
// and returns one EvaluationResult per uploaded document.
type RankerService interface {
	Rank(ctx context.Context, docs []models.UploadedDocument, requiredRaw, optionalRaw string) ([]models.EvaluationResult, error)
}

type rankerService struct {
	extractor     ExtractorService
	geminiService GeminiService
	promptBuilder *PromptBuilder
	logger        *zap.Logger
	concurrency   int
	docTimeout    time.Duration
	temperature   float32
}

func NewRankerService(
	extractor ExtractorService,
	geminiService GeminiService,
	promptBuilder *PromptBuilder,
	logger *zap.Logger,
	concurrency int,
	docTimeout time.Duration,
	temperature float32,
) RankerService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &rankerService{
		extractor:     extractor,
		geminiService: geminiService,
		promptBuilder: promptBuilder,
		logger:        logger,
		concurrency:   concurrency,
		docTimeout:    docTimeout,
		temperature:   temperature,
	}
}

// Rank implements RankerService. The precondition check is the only
// whole-batch failure path: once pipelines launch, any per-document error
// becomes that document's fallback result.
func (s *rankerService) Rank(ctx context.Context, docs []models.UploadedDocument, requiredRaw, optionalRaw string) ([]models.EvaluationResult, error) {
	if len(docs) == 0 {
		return nil, models.NewValidationError("files and required keywords are required")
	}

	required := ParseKeywords(requiredRaw)
	if len(required) == 0 {
		return nil, models.NewValidationError("files and required keywords are required")
	}
	optional := ParseKeywords(optionalRaw)

	batchID := uuid.New().String()
	start := time.Now()

	s.logger.Info("starting batch evaluation",
		zap.String("batch_id", batchID),
		zap.Int("documents", len(docs)),
		zap.Int("required_keywords", len(required)),
		zap.Int("optional_keywords", len(optional)),
	)

	// Index-tagged fan-out: each pipeline owns its slot in the results
	// slice, so completion order does not matter and no locking is needed.
	results := make([]models.EvaluationResult, len(docs))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc models.UploadedDocument) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.evaluateDocument(ctx, batchID, doc, required, optional)
		}(i, doc)
	}

	wg.Wait()

	s.logger.Info("batch evaluation completed",
		zap.String("batch_id", batchID),
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return results, nil
}

// evaluateDocument runs extract, prompt, generate, and parse for one
// document. It never returns an error: every failure collapses into the
// fallback result so one bad document cannot fail the batch.
func (s *rankerService) evaluateDocument(ctx context.Context, batchID string, doc models.UploadedDocument, required, optional []string) models.EvaluationResult {
	ctx, cancel := context.WithTimeout(ctx, s.docTimeout)
	defer cancel()

	text, err := s.extractor.ExtractBytes(doc.Content, FileExt(doc.Name))
	if err != nil {
		s.logger.Warn("document extraction failed",
			zap.String("batch_id", batchID),
			zap.String("file", doc.Name),
			zap.Error(err),
		)
		return FallbackResult(doc.Name, required, err)
	}

	prompt := s.promptBuilder.BuildRankingPrompt(CleanText(text), required, optional)

	s.logger.Debug("sending evaluation prompt",
		zap.String("batch_id", batchID),
		zap.String("file", doc.Name),
		zap.Int("prompt_length", len(prompt)),
	)

	response, err := s.geminiService.GenerateText(ctx, prompt, s.temperature)
	if err != nil {
		s.logger.Warn("evaluation request failed",
			zap.String("batch_id", batchID),
			zap.String("file", doc.Name),
			zap.Error(err),
		)
		return FallbackResult(doc.Name, required, err)
	}

	s.logger.Debug("evaluation response received",
		zap.String("batch_id", batchID),
		zap.String("file", doc.Name),
		zap.String("response_preview", logger.TruncateForLog(response, 200)),
	)

	result, err := ParseEvaluation(response, required, optional)
	if err != nil {
		s.logger.Warn("evaluation response unparsable",
			zap.String("batch_id", batchID),
			zap.String("file", doc.Name),
			zap.Error(err),
		)
		return FallbackResult(doc.Name, required, err)
	}

	result.FileName = doc.Name
	return result
}

// SortByScore orders results by score descending for presentation. The sort
// is stable: equal scores keep their encounter order. The input slice is
// sorted in place and returned.
func SortByScore(results []models.EvaluationResult) []models.EvaluationResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

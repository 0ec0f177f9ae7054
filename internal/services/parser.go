package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/cv-ranker/internal/models"
)

// rawEvaluation mirrors the JSON object the model is asked to return. Score
// is a pointer so an absent field is distinguishable from an explicit zero.
type rawEvaluation struct {
	Score                   *float64 `json:"score"`
	MatchedRequiredKeywords []string `json:"matchedRequiredKeywords"`
	MatchedOptionalKeywords []string `json:"matchedOptionalKeywords"`
	MissingRequiredKeywords []string `json:"missingRequiredKeywords"`
	Strengths               string   `json:"strengths"`
	Weaknesses              string   `json:"weaknesses"`
	OverallAnalysis         string   `json:"overallAnalysis"`
}

// ParseEvaluation turns raw model output into an EvaluationResult. Markdown
// fences are stripped before parsing. A response without a numeric score is
// rejected; missing arrays and narrative fields are tolerated as empty.
// Keyword arrays are filtered to the original sets and the score is clamped
// to [0, 1].
func ParseEvaluation(response string, required, optional []string) (models.EvaluationResult, error) {
	jsonStr := extractJSON(response)

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("failed to unmarshal evaluation JSON: %w\nResponse: %s", err, response)
	}

	if raw.Score == nil {
		return models.EvaluationResult{}, fmt.Errorf("evaluation JSON is missing the score field")
	}

	return models.EvaluationResult{
		Score:                   clampScore(*raw.Score),
		MatchedRequiredKeywords: FilterToSet(raw.MatchedRequiredKeywords, required),
		MatchedOptionalKeywords: FilterToSet(raw.MatchedOptionalKeywords, optional),
		MissingRequiredKeywords: FilterToSet(raw.MissingRequiredKeywords, required),
		Strengths:               strings.TrimSpace(raw.Strengths),
		Weaknesses:              strings.TrimSpace(raw.Weaknesses),
		OverallAnalysis:         strings.TrimSpace(raw.OverallAnalysis),
	}, nil
}

// FallbackResult is the deterministic substitute for a document whose
// pipeline failed at any stage. The whole required set is reported missing
// since no real analysis happened, and the cause ends up in the analysis
// text so a failed document is never silently dropped from the results.
func FallbackResult(fileName string, required []string, cause error) models.EvaluationResult {
	missing := make([]string, len(required))
	copy(missing, required)

	return models.EvaluationResult{
		FileName:                fileName,
		Score:                   0,
		MatchedRequiredKeywords: []string{},
		MatchedOptionalKeywords: []string{},
		MissingRequiredKeywords: missing,
		Strengths:               "",
		Weaknesses:              "Error analyzing CV",
		OverallAnalysis:         "Error analyzing CV: " + cause.Error(),
	}
}

// extractJSON strips markdown code fences the model tends to wrap its output
// in and slices out the outermost JSON object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

package models

// UploadedDocument is one file from the multipart request. It lives for a
// single request: the ranking pipeline consumes the bytes once and discards
// them.
type UploadedDocument struct {
	Name    string
	Content []byte
}

// EvaluationResult is the outcome for a single document. Field names match
// the public JSON contract exactly.
type EvaluationResult struct {
	FileName                string   `json:"fileName"`
	Score                   float64  `json:"score"`
	MatchedRequiredKeywords []string `json:"matchedRequiredKeywords"`
	MatchedOptionalKeywords []string `json:"matchedOptionalKeywords"`
	MissingRequiredKeywords []string `json:"missingRequiredKeywords"`
	Strengths               string   `json:"strengths"`
	Weaknesses              string   `json:"weaknesses"`
	OverallAnalysis         string   `json:"overallAnalysis"`
}

type RankResponse struct {
	Results []EvaluationResult `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationError marks a malformed request. The handler maps it to a 400;
// everything else becomes a 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct {
	maxDocChars int
}

func NewPromptBuilder(maxDocChars int) *PromptBuilder {
	if maxDocChars <= 0 {
		maxDocChars = 30000
	}
	return &PromptBuilder{maxDocChars: maxDocChars}
}

// BuildRankingPrompt creates the CV evaluation prompt. The keyword lists are
// embedded verbatim and the document text is capped at maxDocChars so a
// single oversized CV cannot blow the model's context.
func (pb *PromptBuilder) BuildRankingPrompt(cvText string, required, optional []string) string {
	return fmt.Sprintf(`You are an expert CV evaluator. Analyze the provided CV text and assess how well it matches the given required and optional keywords.

Required Keywords:
%s

Optional Keywords:
%s

CV Text:
%s

Instructions:
1. Analyze the CV text to identify which required and optional keywords are present.
2. Highlight key strengths and weaknesses based on keyword presence and skill coverage.
3. Provide an overall analysis based on the evaluation.

Output Format:
Return ONLY a valid JSON object with EXACTLY these fields:
{
  "score": number (between 0 and 1),
  "matchedRequiredKeywords": string[],
  "matchedOptionalKeywords": string[],
  "missingRequiredKeywords": string[],
  "strengths": string,
  "weaknesses": string,
  "overallAnalysis": string
}

Ensure:
- The JSON is valid and contains no extra text or formatting.
- The score is a float between 0 and 1 indicating how well the CV matches the required criteria.
- All array fields must only include keywords from the input lists.
- Provide thoughtful insights in "strengths", "weaknesses", and "overallAnalysis".
- Do not include markdown or commentary. Return ONLY the raw JSON object.`,
		strings.Join(required, ", "),
		strings.Join(optional, ", "),
		pb.truncate(cvText),
	)
}

func (pb *PromptBuilder) truncate(text string) string {
	if len(text) <= pb.maxDocChars {
		return text
	}
	return text[:pb.maxDocChars]
}

package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kamilpajak/authorship/internal/llm"
)

const judgePrompt = `You are a forensic linguist. Decide whether the passage the user sends was written by a human or generated by a language model.

Respond with a single JSON object and nothing else:
{"label": "Real" or "Fake", "score": <your confidence in that label, between 0 and 1>}

"Real" means human-written. "Fake" means machine-generated.`

// LLMJudge asks a general-purpose LLM to act as a binary classifier. It
// returns a single top label, so the complement is inferred downstream.
type LLMJudge struct {
	client        llm.Client
	maxInputRunes int
}

// NewLLMJudge wraps an LLM client.
func NewLLMJudge(client llm.Client) *LLMJudge {
	return &LLMJudge{client: client, maxInputRunes: defaultMaxInputRunes}
}

// Classify asks the model for a verdict on text.
func (j *LLMJudge) Classify(ctx context.Context, text string) ([]Prediction, error) {
	resp, err := j.client.Complete(ctx, []llm.Message{
		{Role: "system", Content: judgePrompt},
		{Role: "user", Content: truncateRunes(text, j.maxInputRunes)},
	})
	if err != nil {
		return nil, fmt.Errorf("%s judge: %w", j.client.Provider(), err)
	}

	return parseVerdict(resp.Content)
}

// parseVerdict reads label and score from the first JSON object in reply,
// ignoring prose or code fences around it.
func parseVerdict(reply string) ([]Prediction, error) {
	obj, ok := firstJSONObject(reply)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in judge reply", ErrMalformedOutput)
	}

	label := gjson.Get(obj, "label")
	score := gjson.Get(obj, "score")
	if label.Type != gjson.String || label.String() == "" || score.Type != gjson.Number {
		return nil, fmt.Errorf("%w: judge reply lacks label or score: %s", ErrMalformedOutput, obj)
	}
	return []Prediction{{Label: label.String(), Score: score.Float()}}, nil
}

// firstJSONObject returns the earliest-starting valid JSON object in s. For a
// given start the longest valid candidate wins, so nested objects stay whole.
func firstJSONObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		for end := strings.LastIndexByte(s, '}'); end > start; end = strings.LastIndexByte(s[:end], '}') {
			if candidate := s[start : end+1]; gjson.Valid(candidate) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

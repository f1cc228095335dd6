package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultHuggingFaceModel is the RoBERTa detector fine-tuned on GPT-2 output.
const DefaultHuggingFaceModel = "openai-community/roberta-base-openai-detector"

const defaultHuggingFaceURL = "https://api-inference.huggingface.co"

// Inputs longer than this are cut before sending; the detector only sees its
// first 512 tokens anyway.
const defaultMaxInputRunes = 4000

// HuggingFace calls a hosted text-classification model on the Hugging Face
// inference API.
type HuggingFace struct {
	token         string
	model         string
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxInputRunes int
}

// HuggingFaceOption configures a HuggingFace client.
type HuggingFaceOption func(*HuggingFace)

// WithBaseURL overrides the inference endpoint.
func WithBaseURL(url string) HuggingFaceOption {
	return func(c *HuggingFace) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) HuggingFaceOption {
	return func(c *HuggingFace) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64, burst int) HuggingFaceOption {
	return func(c *HuggingFace) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMaxInputRunes truncates inputs longer than n runes.
func WithMaxInputRunes(n int) HuggingFaceOption {
	return func(c *HuggingFace) {
		c.maxInputRunes = n
	}
}

// NewHuggingFace creates a client for model. An empty token falls back to
// HF_API_TOKEN; public models work without one.
func NewHuggingFace(token, model string, opts ...HuggingFaceOption) *HuggingFace {
	if token == "" {
		token = os.Getenv("HF_API_TOKEN")
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	c := &HuggingFace{
		token:         token,
		model:         model,
		baseURL:       defaultHuggingFaceURL,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		maxInputRunes: defaultMaxInputRunes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model identifier.
func (c *HuggingFace) Model() string {
	return c.model
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	TopK       int  `json:"top_k"`
	Truncation bool `json:"truncation"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Classify sends text to the model and returns scores for both classes when
// the model provides them.
func (c *HuggingFace) Classify(ctx context.Context, text string) ([]Prediction, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	jsonBody, err := json.Marshal(hfRequest{
		Inputs:     truncateRunes(text, c.maxInputRunes),
		Parameters: hfParameters{TopK: 2, Truncation: true},
		Options:    hfOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = string(body)
		}
		if resp.StatusCode == http.StatusServiceUnavailable {
			return nil, fmt.Errorf("%w: model %s is loading: %s", ErrUnavailable, c.model, msg)
		}
		return nil, fmt.Errorf("Hugging Face API error: %s - %s", resp.Status, msg)
	}

	return ParsePredictions(body)
}

// ParsePredictions extracts label/score pairs from the shapes text
// classification endpoints return: a list of objects, a list holding one such
// list, or a single object.
func ParsePredictions(body []byte) ([]Prediction, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrMalformedOutput)
	}

	res := gjson.ParseBytes(body)
	if res.IsObject() && res.Get("error").Exists() {
		return nil, fmt.Errorf("classifier error: %s", res.Get("error").String())
	}
	if res.IsArray() {
		if first := res.Get("0"); first.IsArray() {
			res = first
		}
	}

	var items []gjson.Result
	switch {
	case res.IsArray():
		items = res.Array()
	case res.IsObject():
		items = []gjson.Result{res}
	}

	preds := make([]Prediction, 0, len(items))
	for _, item := range items {
		label := item.Get("label")
		score := item.Get("score")
		if !label.Exists() || score.Type != gjson.Number {
			continue
		}
		preds = append(preds, Prediction{Label: label.String(), Score: score.Float()})
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: no label/score pairs in %s", ErrMalformedOutput, truncateRunes(string(body), 200))
	}
	return preds, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

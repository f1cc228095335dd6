package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredictions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Prediction
	}{
		{
			name: "flat list",
			body: `[{"label":"Fake","score":0.91},{"label":"Real","score":0.09}]`,
			want: []Prediction{{"Fake", 0.91}, {"Real", 0.09}},
		},
		{
			name: "nested list",
			body: `[[{"label":"Real","score":0.7},{"label":"Fake","score":0.3}]]`,
			want: []Prediction{{"Real", 0.7}, {"Fake", 0.3}},
		},
		{
			name: "single object",
			body: `{"label":"Fake","score":0.66}`,
			want: []Prediction{{"Fake", 0.66}},
		},
		{
			name: "items without numeric score are skipped",
			body: `[{"label":"Fake","score":"high"},{"label":"Real","score":0.4}]`,
			want: []Prediction{{"Real", 0.4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePredictions([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePredictions_Malformed(t *testing.T) {
	for _, body := range []string{`not json`, `[]`, `[{"foo":1}]`, `"Fake"`} {
		_, err := ParsePredictions([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedOutput, body)
	}
}

func TestParsePredictions_ErrorBody(t *testing.T) {
	_, err := ParsePredictions([]byte(`{"error":"Model is overloaded"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model is overloaded")
}

func TestHuggingFace_Classify(t *testing.T) {
	var gotReq hfRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/org/detector", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"Fake","score":0.8},{"label":"Real","score":0.2}]]`))
	}))
	defer server.Close()

	c := NewHuggingFace("hf_test", "org/detector", WithBaseURL(server.URL+"/"))
	preds, err := c.Classify(context.Background(), "Some passage to classify.")
	require.NoError(t, err)

	assert.Equal(t, []Prediction{{"Fake", 0.8}, {"Real", 0.2}}, preds)
	assert.Equal(t, "Some passage to classify.", gotReq.Inputs)
	assert.Equal(t, 2, gotReq.Parameters.TopK)
	assert.True(t, gotReq.Parameters.Truncation)
	assert.True(t, gotReq.Options.WaitForModel)
	assert.Equal(t, "org/detector", c.Model())
}

func TestHuggingFace_NoTokenOmitsHeader(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"label":"Real","score":0.99}]`))
	}))
	defer server.Close()

	c := NewHuggingFace("", "", WithBaseURL(server.URL))
	assert.Equal(t, DefaultHuggingFaceModel, c.Model())

	_, err := c.Classify(context.Background(), "text")
	require.NoError(t, err)
}

func TestHuggingFace_TokenFromEnv(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "hf_env")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_env", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"label":"Real","score":0.99}]`))
	}))
	defer server.Close()

	_, err := NewHuggingFace("", "m", WithBaseURL(server.URL)).Classify(context.Background(), "text")
	require.NoError(t, err)
}

func TestHuggingFace_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
		contains    string
	}{
		{"loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading","estimated_time":20}`, true, "currently loading"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, false, "Invalid credentials"},
		{"plain body", http.StatusBadGateway, `upstream down`, false, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHuggingFace("t", "m", WithBaseURL(server.URL)).Classify(context.Background(), "text")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.unavailable, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestHuggingFace_TruncatesInput(t *testing.T) {
	var got hfRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"label":"Real","score":0.5}]`))
	}))
	defer server.Close()

	c := NewHuggingFace("t", "m", WithBaseURL(server.URL), WithMaxInputRunes(5))
	_, err := c.Classify(context.Background(), "文本检测器测试样例")
	require.NoError(t, err)
	assert.Equal(t, "文本检测器", got.Inputs)
}

func TestHuggingFace_RateLimitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"Real","score":0.5}]`))
	}))
	defer server.Close()

	c := NewHuggingFace("t", "m", WithBaseURL(server.URL), WithRateLimit(0.001, 1))
	_, err := c.Classify(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Classify(ctx, "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 0))
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.True(t, utf8.ValidString(truncateRunes("héllo", 2)))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
}

package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/authorship/internal/llm"
)

type fakeLLM struct {
	reply    string
	err      error
	messages []llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message) (*llm.Response, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.reply}, nil
}

func (f *fakeLLM) Provider() llm.Provider { return llm.ProviderOpenAI }
func (f *fakeLLM) Model() string          { return "fake" }

func TestLLMJudge_Classify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Prediction
	}{
		{"bare json", `{"label":"Fake","score":0.83}`, Prediction{"Fake", 0.83}},
		{"code fence", "```json\n{\"label\": \"Real\", \"score\": 0.6}\n```", Prediction{"Real", 0.6}},
		{"prose around", `Verdict: {"label":"Real","score":0.9} as requested.`, Prediction{"Real", 0.9}},
		{"braces in prose", `Weighing {style} and {rhythm}, I conclude {"label":"Fake","score":0.7}. Done {ok}.`, Prediction{"Fake", 0.7}},
		{"extra fields", `{"label":"Fake","score":1,"reason":{"signals":["lists"]}}`, Prediction{"Fake", 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeLLM{reply: tt.reply}
			preds, err := NewLLMJudge(f).Classify(context.Background(), "passage")
			require.NoError(t, err)
			assert.Equal(t, []Prediction{tt.want}, preds)

			require.Len(t, f.messages, 2)
			assert.Equal(t, "system", f.messages[0].Role)
			assert.Equal(t, llm.Message{Role: "user", Content: "passage"}, f.messages[1])
		})
	}
}

func TestLLMJudge_Unparseable(t *testing.T) {
	replies := map[string]string{
		"no json":        "I cannot tell.",
		"broken json":    `{"label":"Fake","score":}`,
		"missing label":  `{"score":0.4}`,
		"missing score":  `{"label":"Real"}`,
		"string score":   `{"label":"Real","score":"high"}`,
		"numeric label":  `{"label":1,"score":0.4}`,
		"unclosed brace": `Verdict: {"label":"Real"`,
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			_, err := NewLLMJudge(&fakeLLM{reply: reply}).Classify(context.Background(), "passage")
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestLLMJudge_ClientError(t *testing.T) {
	_, err := NewLLMJudge(&fakeLLM{err: errors.New("quota exceeded")}).Classify(context.Background(), "passage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai judge")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestLLMJudge_NormalizesThroughAdapter(t *testing.T) {
	judge := NewLLMJudge(&fakeLLM{reply: `{"label":"Real","score":0.8}`})
	out, err := NewAdapter(Static(judge), DefaultLabels()).Classify(context.Background(), "passage")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, out.Human, 1e-12)
	assert.InDelta(t, 0.2, out.AI, 1e-12)
}

package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/kamilpajak/authorship/pkg/models"
)

// Labels describes how a classifier names its two classes.
type Labels struct {
	// Human and Machine are the exact class labels looked up when the
	// classifier returns scores for both classes.
	Human   string `yaml:"human"`
	Machine string `yaml:"machine"`

	// HumanAliases are case-insensitive labels that mean "human" when only a
	// single top label is available. Every other label counts as machine.
	HumanAliases []string `yaml:"human_aliases"`
}

// DefaultLabels matches the RoBERTa OpenAI detector ("Real" / "Fake").
func DefaultLabels() Labels {
	return Labels{
		Human:        "Real",
		Machine:      "Fake",
		HumanAliases: []string{"real", "human"},
	}
}

// IsHuman reports whether label names the human class.
func (l Labels) IsHuman(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return false
	}
	if strings.EqualFold(label, l.Human) {
		return true
	}
	for _, alias := range l.HumanAliases {
		if label == strings.ToLower(alias) {
			return true
		}
	}
	return false
}

// Normalize turns raw predictions into a two-class probability pair summing to 1.
//
// When both class labels are present their scores are used. Otherwise the
// first prediction is taken as the top label: its score goes to whichever
// class the label implies and the other class gets the complement. The raw
// best prediction (highest score) is always kept for traceability.
func Normalize(preds []Prediction, labels Labels) (models.ClassifierOutput, error) {
	if len(preds) == 0 {
		return models.ClassifierOutput{}, fmt.Errorf("%w: no predictions", ErrMalformedOutput)
	}

	scores := make(map[string]float64, len(preds))
	for _, p := range preds {
		if math.IsNaN(p.Score) {
			return models.ClassifierOutput{}, fmt.Errorf("%w: score for %q is NaN", ErrMalformedOutput, p.Label)
		}
		scores[p.Label] = p.Score
	}

	var human, ai float64
	humanScore, hasHuman := scores[labels.Human]
	aiScore, hasAI := scores[labels.Machine]
	if hasHuman && hasAI {
		human, ai = clamp01(humanScore), clamp01(aiScore)
		if sum := human + ai; sum > 0 {
			ai = ai / sum
		} else {
			ai = 0.5
		}
	} else {
		top := preds[0]
		if labels.IsHuman(top.Label) {
			ai = 1 - clamp01(top.Score)
		} else {
			ai = clamp01(top.Score)
		}
	}

	best := preds[0]
	for _, p := range preds[1:] {
		if p.Score > best.Score {
			best = p
		}
	}

	return models.ClassifierOutput{
		Human: 1 - ai,
		AI:    ai,
		Label: best.Label,
		Score: best.Score,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

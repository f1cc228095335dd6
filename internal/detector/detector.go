// Package detector blends an external classifier with statistical text
// features into a single AI-vs-human verdict.
package detector

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kamilpajak/authorship/internal/classifier"
	"github.com/kamilpajak/authorship/internal/features"
	"github.com/kamilpajak/authorship/internal/textstats"
	"github.com/kamilpajak/authorship/pkg/models"
)

// DefaultModelWeight is the share of the blended score taken from the
// external classifier.
const DefaultModelWeight = 0.75

const (
	// Inputs with fewer words than this are not classified.
	minWords = 5

	// Extra-heuristics shrinkage fades out linearly over this word range.
	shrinkFloor    = 5.0
	shrinkSpan     = 75.0
	shrinkStrength = 0.25
)

// Classifier is the normalized two-class view of an external model.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.ClassifierOutput, error)
}

// Detector runs detections. It holds no per-call state and is safe for
// concurrent use.
type Detector struct {
	classifier  Classifier
	modelWeight float64
	log         logrus.FieldLogger
}

// Option configures a Detector.
type Option func(*Detector)

// WithModelWeight sets α, the classifier's share of the blend. Values outside
// [0,1] are clamped.
func WithModelWeight(alpha float64) Option {
	return func(d *Detector) {
		d.modelWeight = clamp01(alpha)
	}
}

// WithLogger sets the logger used for per-detection debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Detector) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a Detector around classifier.
func New(classifier Classifier, opts ...Option) *Detector {
	d := &Detector{
		classifier:  classifier,
		modelWeight: DefaultModelWeight,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ModelWeight returns α.
func (d *Detector) ModelWeight() float64 {
	return d.modelWeight
}

// Detect scores text. Inputs that are empty or shorter than five words yield
// an Uncertain result without calling the classifier. Classifier failures are
// returned as errors; there is no feature-only fallback.
func (d *Detector) Detect(ctx context.Context, text string, extraHeuristics bool) (*models.DetectionResult, error) {
	st := textstats.Extract(text)
	if strings.TrimSpace(text) == "" || st.Words < minWords {
		return uncertain(st, extraHeuristics), nil
	}

	out, err := d.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if math.IsNaN(out.AI) {
		return nil, fmt.Errorf("classify: %w: ai probability is NaN", classifier.ErrMalformedOutput)
	}

	feat := features.Score(text, st)

	ai := d.modelWeight*out.AI + (1-d.modelWeight)*feat.Score
	if extraHeuristics {
		shrink := Shrink(st.Words)
		ai = ai*(1-shrink) + 0.5*shrink
	}
	ai = clamp01(ai)
	human := 1 - ai

	label := models.LabelAI
	if ai < human {
		label = models.LabelHuman
	}

	d.log.WithFields(logrus.Fields{
		"words":    st.Words,
		"model_ai": out.AI,
		"feature":  feat.Score,
		"ai":       ai,
		"label":    label,
	}).Debug("detection complete")

	return &models.DetectionResult{
		AIProbability:    ai,
		HumanProbability: human,
		Label:            label,
		Interpretation:   models.Interpret(ai),
		ModelLabel:       out.Label,
		ModelScore:       out.Score,
		Stats:            st,
		Features:         &feat,
		ExtraHeuristics:  extraHeuristics,
	}, nil
}

// Shrink returns the extra-heuristics pull toward 0.5 for a passage of the
// given word count: 0.25 at five words, fading to 0 at eighty.
func Shrink(words float64) float64 {
	return shrinkStrength * (1 - math.Min(1, (words-shrinkFloor)/shrinkSpan))
}

func uncertain(st models.TextStatistics, extraHeuristics bool) *models.DetectionResult {
	return &models.DetectionResult{
		AIProbability:    0.5,
		HumanProbability: 0.5,
		Label:            models.LabelUncertain,
		Interpretation:   models.InterpretUncertain,
		ModelLabel:       models.ModelLabelNone,
		ModelScore:       0,
		Stats:            st,
		ExtraHeuristics:  extraHeuristics,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

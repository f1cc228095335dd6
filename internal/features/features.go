// Package features turns text statistics into a single AI-likeness score in
// [0,1] that does not depend on any learned model.
package features

import (
	"math"
	"regexp"

	"github.com/kamilpajak/authorship/pkg/models"
)

// Sub-score weights.
const (
	WeightBullet     = 0.35
	WeightLength     = 0.25
	WeightPunct      = 0.25
	WeightRepetition = 0.15
)

const (
	bulletSaturation = 5.0

	// Soft center for average sentence length, in words.
	sentenceCenter = 18.0

	// Punctuation ratio window [0.01, 0.07].
	punctLow  = 0.01
	punctSpan = 0.06

	// Repetition ratio window [0.06, 0.20].
	repeatLow  = 0.06
	repeatSpan = 0.14

	// Below this many words the score is pulled toward 0.5.
	shortTextWords    = 60.0
	shortTextStrength = 0.6
)

// List markers at the start of the text or of a line: "-", "•", "*",
// "1." / "1)" numbering, or circled digits.
var bulletFinder = regexp.MustCompile(`(?:^|\n)\s*(?:[-•*]|\d+[.)]|[①②③④⑤⑥⑦⑧⑨])\s+`)

// Score computes the feature score for text and its precomputed statistics.
// The raw text is needed for list-marker detection only.
func Score(text string, st models.TextStatistics) models.FeatureBreakdown {
	hits := BulletHits(text)
	b := models.FeatureBreakdown{
		BulletHits:       hits,
		Bullet:           BulletScore(hits),
		LengthRegularity: LengthRegularity(st.AvgSentenceLen),
		Punctuation:      PunctuationDensity(st.PunctRatio),
		Repetition:       Repetition(st.RepeatRatio),
		ShortPenalty:     ShortPenalty(st.Words),
	}
	b.Weighted = WeightBullet*b.Bullet +
		WeightLength*b.LengthRegularity +
		WeightPunct*b.Punctuation +
		WeightRepetition*b.Repetition
	b.Score = Dampen(b.Weighted, b.ShortPenalty)
	return b
}

// BulletHits counts list markers at line starts.
func BulletHits(text string) int {
	return len(bulletFinder.FindAllStringIndex(text, -1))
}

// BulletScore saturates at five list markers.
func BulletScore(hits int) float64 {
	return math.Min(1, float64(hits)/bulletSaturation)
}

// LengthRegularity is 1 at an average sentence length of 18 words and falls
// off linearly to 0 at 0 or 36 words.
func LengthRegularity(avgSentenceLen float64) float64 {
	return 1 - math.Min(1, math.Abs(avgSentenceLen-sentenceCenter)/sentenceCenter)
}

// PunctuationDensity maps a punctuation ratio in [0.01, 0.07] onto [0,1].
func PunctuationDensity(ratio float64) float64 {
	return remap(ratio, punctLow, punctSpan)
}

// Repetition maps a top-token repetition ratio in [0.06, 0.20] onto [0,1].
func Repetition(ratio float64) float64 {
	return remap(ratio, repeatLow, repeatSpan)
}

// ShortPenalty is 0 at 60 words or more and grows linearly to 1 at zero words.
func ShortPenalty(words float64) float64 {
	if words >= shortTextWords {
		return 0
	}
	return 1 - words/shortTextWords
}

// Dampen pulls score toward 0.5 in proportion to the short-text penalty.
func Dampen(score, shortPenalty float64) float64 {
	pull := shortTextStrength * shortPenalty
	return score*(1-pull) + 0.5*pull
}

func remap(v, lo, span float64) float64 {
	return clamp01((v - lo) / span)
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

package models

// Label is the discrete best-guess verdict for a passage.
type Label string

const (
	LabelAI        Label = "AI"
	LabelHuman     Label = "Human"
	LabelUncertain Label = "Uncertain"
)

// ModelLabelNone is reported as the raw model label when no classifier call was made.
const ModelLabelNone = "N/A"

// TextStatistics holds surface-level lexical metrics for a passage.
// All fields are zero for empty or whitespace-only input.
type TextStatistics struct {
	Chars             float64 `json:"chars"`
	Words             float64 `json:"words"`
	Sentences         float64 `json:"sentences"`
	AvgSentenceLen    float64 `json:"avg_sentence_len_words"`
	PunctRatio        float64 `json:"punct_ratio"`
	RepeatRatio       float64 `json:"repeat_ratio"`
	SentenceLenStdDev float64 `json:"sentence_len_stddev"`
}

// IsEmpty reports whether the statistics describe an empty passage.
func (s TextStatistics) IsEmpty() bool {
	return s.Chars == 0
}

// ClassifierOutput is the normalized two-class output of an external classifier.
// Human and AI always sum to 1.
type ClassifierOutput struct {
	Human float64 `json:"human"`
	AI    float64 `json:"ai"`

	// Raw top prediction, kept for traceability.
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FeatureBreakdown is the per-signal trace of the statistical feature score.
type FeatureBreakdown struct {
	BulletHits       int     `json:"bullet_hits"`
	Bullet           float64 `json:"bullet"`
	LengthRegularity float64 `json:"length_regularity"`
	Punctuation      float64 `json:"punctuation"`
	Repetition       float64 `json:"repetition"`
	Weighted         float64 `json:"weighted"`
	ShortPenalty     float64 `json:"short_penalty"`
	Score            float64 `json:"score"`
}

// DetectionResult is the final output of a detection call.
type DetectionResult struct {
	AIProbability    float64           `json:"ai_probability"`
	HumanProbability float64           `json:"human_probability"`
	Label            Label             `json:"label"`
	Interpretation   Interpretation    `json:"interpretation"`
	ModelLabel       string            `json:"model_label"`
	ModelScore       float64           `json:"model_score"`
	Stats            TextStatistics    `json:"stats"`
	Features         *FeatureBreakdown `json:"features,omitempty"`
	ExtraHeuristics  bool              `json:"extra_heuristics"`
}

// AIPercent returns the AI probability as a percentage.
func (r *DetectionResult) AIPercent() float64 {
	return r.AIProbability * 100
}

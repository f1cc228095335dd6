package models

// Interpretation is a coarse reading of an AI probability, used to avoid
// presenting a hard verdict when the estimate is close to even.
type Interpretation string

const (
	InterpretUncertain   Interpretation = "uncertain"
	InterpretLikelyAI    Interpretation = "likely_ai"
	InterpretLikelyHuman Interpretation = "likely_human"
	InterpretLeaning     Interpretation = "leaning"
)

// Interpret maps an AI probability in [0,1] to an interpretation band:
// 45-55% uncertain, >=70% likely AI, <=30% likely human, otherwise leaning.
func Interpret(aiProbability float64) Interpretation {
	pct := aiProbability * 100
	switch {
	case pct >= 45 && pct <= 55:
		return InterpretUncertain
	case pct >= 70:
		return InterpretLikelyAI
	case pct <= 30:
		return InterpretLikelyHuman
	default:
		return InterpretLeaning
	}
}

// Describe returns a short human-readable description of the band.
func (i Interpretation) Describe() string {
	switch i {
	case InterpretUncertain:
		return "uncertain (between 45% and 55%)"
	case InterpretLikelyAI:
		return "leans AI (high probability)"
	case InterpretLikelyHuman:
		return "leans human (high probability)"
	case InterpretLeaning:
		return "leans one way (moderate confidence)"
	default:
		return string(i)
	}
}

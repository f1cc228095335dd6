// Package classifier adapts external text-classification capabilities into a
// normalized human/AI probability pair.
package classifier

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the classification capability failed to
	// initialize or to answer. It is fatal for the call and never retried.
	ErrUnavailable = errors.New("classifier unavailable")

	// ErrMalformedOutput means the capability answered with nothing usable.
	ErrMalformedOutput = errors.New("malformed classifier output")
)

// Prediction is one label/score pair returned by a classifier.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier is any capability that, given text, returns one or more
// label/score pairs.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, text string) ([]Prediction, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, text string) ([]Prediction, error) {
	return f(ctx, text)
}

// Factory builds a Classifier. It is expected to be expensive (model
// loading, remote warm-up) and is called at most once per Lazy.
type Factory func(ctx context.Context) (Classifier, error)

// Static returns a Factory that always yields c.
func Static(c Classifier) Factory {
	return func(context.Context) (Classifier, error) {
		return c, nil
	}
}

package classifier

import (
	"context"
	"fmt"

	"github.com/kamilpajak/authorship/pkg/models"
)

// Adapter owns a lazily initialized classifier and normalizes its output.
// It is safe for concurrent use.
type Adapter struct {
	lazy   *Lazy
	labels Labels
}

// NewAdapter creates an Adapter. The factory is not called until the first
// Classify.
func NewAdapter(factory Factory, labels Labels) *Adapter {
	return &Adapter{lazy: NewLazy(factory), labels: labels}
}

// Classify runs the underlying classifier on text and returns the normalized
// (human, ai) pair. Initialization and invocation failures are wrapped in
// ErrUnavailable; there is no fallback.
func (a *Adapter) Classify(ctx context.Context, text string) (models.ClassifierOutput, error) {
	c, err := a.lazy.Get(ctx)
	if err != nil {
		return models.ClassifierOutput{}, err
	}

	preds, err := c.Classify(ctx, text)
	if err != nil {
		return models.ClassifierOutput{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return Normalize(preds, a.labels)
}

// Ready reports whether the underlying classifier has been loaded.
func (a *Adapter) Ready() bool {
	return a.lazy.Loaded()
}

// Warm forces initialization without classifying anything.
func (a *Adapter) Warm(ctx context.Context) error {
	_, err := a.lazy.Get(ctx)
	return err
}

package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/authorship/pkg/models"
)

func sampleResult(ai float64) *models.DetectionResult {
	label := models.LabelAI
	if ai < 0.5 {
		label = models.LabelHuman
	}
	return &models.DetectionResult{
		AIProbability:    ai,
		HumanProbability: 1 - ai,
		Label:            label,
		Interpretation:   models.Interpret(ai),
		ModelLabel:       "Fake",
		ModelScore:       0.9,
		Stats:            models.TextStatistics{Chars: 120, Words: 22, Sentences: 2, AvgSentenceLen: 11},
		Features:         &models.FeatureBreakdown{BulletHits: 1, Bullet: 0.2, Score: 0.41},
		ExtraHeuristics:  true,
	}
}

// exerciseStore checks the behavior every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	base := time.Now().UTC().Add(time.Hour)
	var saved []*Record
	for i, ai := range []float64{0.2, 0.8, 0.55} {
		r := NewRecord("passage number "+string(rune('a'+i)), sampleResult(ai))
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Save(ctx, r))
		saved = append(saved, r)
	}

	got, err := s.Get(ctx, saved[1].ID)
	require.NoError(t, err)
	assert.Equal(t, saved[1].ID, got.ID)
	assert.Equal(t, saved[1].TextSHA256, got.TextSHA256)
	assert.Equal(t, "passage number b", got.Excerpt)
	assert.True(t, got.ExtraHeuristics)
	assert.Equal(t, saved[1].Result, got.Result)
	assert.WithinDuration(t, saved[1].CreatedAt, got.CreatedAt, time.Millisecond)

	list, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, saved[2].ID, list[0].ID)
	assert.Equal(t, saved[1].ID, list[1].ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 3)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	r := NewRecord("kept across restarts", sampleResult(0.7))
	require.NoError(t, s.Save(ctx, r))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Excerpt, got.Excerpt)
}

func TestSave_FillsMissingFields(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	r := &Record{Result: *sampleResult(0.3)}
	require.NoError(t, s.Save(context.Background(), r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestNewRecord(t *testing.T) {
	text := "  Line one.\n\n   Line   two.  "
	r := NewRecord(text, sampleResult(0.6))

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Len(t, r.TextSHA256, 64)
	assert.Equal(t, "Line one. Line two.", r.Excerpt)
	assert.True(t, r.ExtraHeuristics)
	assert.Equal(t, NewRecord(text, sampleResult(0.1)).TextSHA256, r.TextSHA256)

	long := NewRecord(strings.Repeat("长", 300), sampleResult(0.6))
	assert.Equal(t, strings.Repeat("长", 200)+"…", long.Excerpt)
}

func TestValidateURL(t *testing.T) {
	for _, url := range []string{"", "postgres://u@h/db", "postgresql://h/db", "sqlite://x.db", "file:x.db?cache=shared"} {
		assert.NoError(t, ValidateURL(url), url)
	}
	for _, url := range []string{"mysql://h/db", "history.db", "redis://h"} {
		assert.ErrorContains(t, ValidateURL(url), "unsupported store URL", url)
	}
}

func TestOpen_Empty(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, maxListLimit, clampLimit(10_000))
}

// Package store persists detection results for later review.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kamilpajak/authorship/pkg/models"
)

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("detection not found")

const (
	excerptRunes = 200

	// DefaultListLimit applies when List is called with a non-positive limit.
	DefaultListLimit = 50
	maxListLimit     = 500
)

// Record is one stored detection. The full input text is not kept; the hash
// identifies repeated submissions and the excerpt helps a reader recognize it.
type Record struct {
	ID              uuid.UUID              `json:"id"`
	TextSHA256      string                 `json:"text_sha256"`
	Excerpt         string                 `json:"excerpt"`
	ExtraHeuristics bool                   `json:"extra_heuristics"`
	Result          models.DetectionResult `json:"result"`
	CreatedAt       time.Time              `json:"created_at"`
}

// Store is a detection history backend.
type Store interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// NewRecord builds a record for a finished detection.
func NewRecord(text string, result *models.DetectionResult) *Record {
	sum := sha256.Sum256([]byte(text))
	return &Record{
		ID:              uuid.New(),
		TextSHA256:      hex.EncodeToString(sum[:]),
		Excerpt:         excerpt(text),
		ExtraHeuristics: result.ExtraHeuristics,
		Result:          *result,
		CreatedAt:       time.Now().UTC(),
	}
}

// Open connects to the backend named by url: postgres:// or postgresql://
// for PostgreSQL (migrations are applied), sqlite://path or file: for an
// embedded SQLite database.
func Open(ctx context.Context, url string) (Store, error) {
	switch kind, err := scheme(url); {
	case err != nil:
		return nil, err
	case kind == "postgres":
		if err := Migrate(url); err != nil {
			return nil, err
		}
		return NewPostgres(ctx, url)
	case kind == "sqlite":
		return OpenSQLite(ctx, sqlitePath(url))
	default:
		return nil, fmt.Errorf("store URL is empty")
	}
}

// ValidateURL reports whether Open understands url. An empty url is valid
// and means history is disabled.
func ValidateURL(url string) error {
	_, err := scheme(url)
	return err
}

func scheme(url string) (string, error) {
	switch {
	case url == "":
		return "", nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported store URL %q (want postgres://, sqlite:// or file:)", url)
	}
}

func sqlitePath(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, maxListLimit)
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptRunes {
		return text
	}
	return string([]rune(text)[:excerptRunes]) + "…"
}

func prepare(r *Record) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

package authorship

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kamilpajak/authorship/internal/store"
	"github.com/kamilpajak/authorship/pkg/models"
)

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, r *models.DetectionResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = labelColor(r.Label).Fprintf(w, "%s", strings.ToUpper(string(r.Label)))
	_, _ = dim.Fprintf(w, "  %s\n", r.Interpretation.Describe())
	fmt.Fprintln(w)

	printProbabilityBar(w, r.AIProbability)
	fmt.Fprintf(w, "  Human: %5.1f%%\n", r.HumanProbability*100)
	fmt.Fprintln(w)

	_, _ = bold.Fprintln(w, "MODEL")
	if r.ModelLabel == models.ModelLabelNone {
		_, _ = dim.Fprintln(w, "  not called (fewer than five words)")
	} else {
		fmt.Fprintf(w, "  %s (%.3f)\n", r.ModelLabel, r.ModelScore)
	}
	fmt.Fprintln(w)

	st := r.Stats
	_, _ = bold.Fprintln(w, "TEXT")
	fmt.Fprintf(w, "  %.0f chars, %.0f words, %.0f sentences (avg %.1f words, stddev %.1f)\n",
		st.Chars, st.Words, st.Sentences, st.AvgSentenceLen, st.SentenceLenStdDev)
	fmt.Fprintf(w, "  punctuation %.3f, top-token share %.3f\n", st.PunctRatio, st.RepeatRatio)

	if f := r.Features; f != nil {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "FEATURES")
		fmt.Fprintf(w, "  list markers   %.2f (%d)\n", f.Bullet, f.BulletHits)
		fmt.Fprintf(w, "  length         %.2f\n", f.LengthRegularity)
		fmt.Fprintf(w, "  punctuation    %.2f\n", f.Punctuation)
		fmt.Fprintf(w, "  repetition     %.2f\n", f.Repetition)
		fmt.Fprintf(w, "  score          %.2f", f.Score)
		if f.ShortPenalty > 0 {
			_, _ = dim.Fprintf(w, " (short-text penalty %.2f)", f.ShortPenalty)
		}
		fmt.Fprintln(w)
	}

	if !r.ExtraHeuristics {
		fmt.Fprintln(w)
		_, _ = dim.Fprintln(w, "Extra heuristics disabled.")
	}
}

func printProbabilityBar(w io.Writer, ai float64) {
	const barWidth = 24
	filled := int(ai*barWidth + 0.5)
	filled = max(0, min(filled, barWidth))

	var barColor *color.Color
	switch models.Interpret(ai) {
	case models.InterpretLikelyAI:
		barColor = color.New(color.FgRed)
	case models.InterpretLikelyHuman:
		barColor = color.New(color.FgGreen)
	default:
		barColor = color.New(color.FgYellow)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "  AI:    %5.1f%% ", ai*100)
	_, _ = barColor.Fprint(w, bar)
	fmt.Fprintln(w)
}

func labelColor(l models.Label) *color.Color {
	switch l {
	case models.LabelAI:
		return color.New(color.Bold, color.FgRed)
	case models.LabelHuman:
		return color.New(color.Bold, color.FgGreen)
	default:
		return color.New(color.Bold, color.FgYellow)
	}
}

func printHistory(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No detections recorded yet.")
		return
	}
	dim := color.New(color.FgHiBlack)
	for _, rec := range records {
		_, _ = dim.Fprintf(w, "%s  %s  ", rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.ID)
		_, _ = labelColor(rec.Result.Label).Fprintf(w, "%-9s", rec.Result.Label)
		fmt.Fprintf(w, " %5.1f%%  %s\n", rec.Result.AIPercent(), truncate(rec.Excerpt, 60))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

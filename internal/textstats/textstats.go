// Package textstats computes surface-level lexical metrics for a passage.
package textstats

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"github.com/kamilpajak/authorship/pkg/models"
)

// Sentence terminators cover Latin and full-width CJK marks; newlines also end a sentence.
var sentenceSplit = regexp.MustCompile(`[.!?。！？]\s*|\n+`)

var punctFinder = regexp.MustCompile(`[，,。.!?！？；;：:、\-—（）()《》「」『』"'…]`)

// Extract computes TextStatistics for text. It never fails; empty or
// whitespace-only input yields all-zero statistics.
func Extract(text string) models.TextStatistics {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.TextStatistics{}
	}

	sentences := Sentences(text)
	tokens := Tokenize(text)
	chars := utf8.RuneCountInString(text)
	punct := len(punctFinder.FindAllStringIndex(text, -1))

	return models.TextStatistics{
		Chars:             float64(chars),
		Words:             float64(len(tokens)),
		Sentences:         float64(len(sentences)),
		AvgSentenceLen:    float64(len(tokens)) / float64(maxInt(1, len(sentences))),
		PunctRatio:        float64(punct) / float64(maxInt(1, chars)),
		RepeatRatio:       repeatRatio(tokens),
		SentenceLenStdDev: sentenceLenStdDev(sentences),
	}
}

// Sentences splits text on sentence terminators and newlines, discarding
// blank fragments.
func Sentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tokenize returns maximal runs of word characters, with every CJK ideograph
// emitted as a token of its own.
func Tokenize(text string) []string {
	var tokens []string
	start := -1
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, text[start:end])
			start = -1
		}
	}
	for i, r := range text {
		switch {
		case isCJK(r):
			flush(i)
			tokens = append(tokens, string(r))
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		default:
			flush(i)
		}
	}
	flush(len(text))
	return tokens
}

func isCJK(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// repeatRatio is the frequency of the most common token over the token count.
func repeatRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokens))
	top := 0
	for _, t := range tokens {
		counts[t]++
		if counts[t] > top {
			top = counts[t]
		}
	}
	return float64(top) / float64(maxInt(1, len(tokens)))
}

func sentenceLenStdDev(sentences []string) float64 {
	if len(sentences) < 2 {
		return 0
	}
	lengths := make(stats.Float64Data, 0, len(sentences))
	for _, s := range sentences {
		lengths = append(lengths, float64(len(Tokenize(s))))
	}
	sd, err := stats.StandardDeviationPopulation(lengths)
	if err != nil {
		return 0
	}
	return sd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package readability scores marketing copy with the Flesch Reading Ease,
// Flesch-Kincaid Grade Level and Gunning Fog formulas.
package readability

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	sentenceTerminators = regexp.MustCompile(`[.!?]+`)
	silentSuffix        = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingY            = regexp.MustCompile(`^y`)
	vowelRuns           = regexp.MustCompile(`[aeiouy]+`)
)

// complexWordSyllables is the syllable count at which a word counts as complex
// for the Gunning Fog index.
const complexWordSyllables = 3

// Scores holds the three readability metrics, each rounded to one decimal.
type Scores struct {
	FleschReadingEase float64 `json:"flesch_reading_ease"`
	FleschGradeLevel  float64 `json:"flesch_grade_level"`
	GunningFog        float64 `json:"gunning_fog"`
}

// Counts are the raw text statistics the formulas are computed from.
type Counts struct {
	Sentences    int `json:"sentences"`
	Words        int `json:"words"`
	Syllables    int `json:"syllables"`
	ComplexWords int `json:"complex_words"`
}

// Score computes the readability metrics for text. Empty or whitespace-only
// text yields zero scores.
func Score(text string) Scores {
	c := Count(text)
	if c.Words == 0 {
		return Scores{}
	}

	wordsPerSentence := float64(c.Words) / float64(c.Sentences)
	syllablesPerWord := float64(c.Syllables) / float64(c.Words)
	complexRatio := float64(c.ComplexWords) / float64(c.Words)

	ease := math.Max(0, 206.835-1.015*wordsPerSentence-84.6*syllablesPerWord)
	grade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	fog := 0.4 * (wordsPerSentence + 100*complexRatio)

	return Scores{
		FleschReadingEase: round1(ease),
		FleschGradeLevel:  round1(grade),
		GunningFog:        round1(fog),
	}
}

// Count returns sentence, word, syllable and complex word counts for text.
// For non-empty text Sentences is at least 1.
func Count(text string) Counts {
	text = strings.TrimSpace(text)
	words := strings.Fields(text)
	if len(words) == 0 {
		return Counts{}
	}

	c := Counts{
		Sentences: len(sentenceTerminators.FindAllStringIndex(text, -1)),
		Words:     len(words),
	}
	if c.Sentences == 0 {
		c.Sentences = 1
	}

	for _, w := range words {
		n := CountSyllables(w)
		c.Syllables += n
		if n >= complexWordSyllables {
			c.ComplexWords++
		}
	}
	return c
}

// CountSyllables estimates the syllables in a single word. The heuristic
// counts vowel groups after dropping common silent endings, so irregular
// words are miscounted. Never returns less than 1.
func CountSyllables(word string) int {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= 3 {
		return 1
	}

	word = silentSuffix.ReplaceAllString(word, "")
	word = leadingY.ReplaceAllString(word, "")

	n := len(vowelRuns.FindAllStringIndex(word, -1))
	if n == 0 {
		return 1
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

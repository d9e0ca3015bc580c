// Package sentiment scores news text with an offline, lexicon-based analyzer.
// Scores are compound polarity values in [-1, 1]: negative is bearish,
// positive is bullish, zero carries no signal.
package sentiment

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Scoring errors. An article that fails to score is excluded from the average.
var (
	ErrEmptyText       = errors.New("sentiment: empty text")
	ErrScoreOutOfRange = errors.New("sentiment: compound score outside [-1, 1]")
)

// Scorer maps article text to a compound score in [-1, 1].
type Scorer interface {
	Score(text string) (float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string) (float64, error)

// Score calls f(text).
func (f ScorerFunc) Score(text string) (float64, error) { return f(text) }

// CheckCompound validates a score returned by a Scorer.
func CheckCompound(score float64) error {
	if math.IsNaN(score) || score < -1 || score > 1 {
		return fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
	}
	return nil
}

// ------------------------------------------------------------------
// Lexicon scorer.
// Valences are on a -4..+4 scale; the summed valence is squashed into
// [-1, 1] with x/sqrt(x²+alpha), the normalization used by VADER.
// ------------------------------------------------------------------

const (
	normalizationAlpha = 15.0
	negationScalar     = -0.74
	negationWindow     = 3
)

// market vocabulary (lowercase tokens).
var defaultLexicon = map[string]float64{
	// bullish
	"bullish": 2.8, "rally": 2.4, "rallies": 2.4, "surge": 2.8, "surges": 2.8,
	"soar": 3.0, "soars": 3.0, "jump": 2.0, "jumps": 2.0, "gain": 1.8, "gains": 1.8,
	"upbeat": 2.0, "positive": 1.6, "growth": 1.6, "upgrade": 2.4, "upgraded": 2.4,
	"outperform": 2.4, "buy": 1.2, "strong": 1.6, "recovery": 2.0, "rebound": 2.0,
	"breakout": 2.4, "beat": 2.0, "beats": 2.0, "exceeds": 2.0, "expansion": 1.6,
	"profit": 1.2, "profits": 1.2, "dividend": 1.6, "accumulate": 2.0, "record": 1.2,
	"approval": 2.0, "approved": 2.0, "partnership": 1.4, "adoption": 1.6, "optimism": 2.2,
	// bearish
	"bearish": -2.8, "crash": -3.2, "crashes": -3.2, "plunge": -2.8, "plunges": -2.8,
	"slump": -2.4, "tumble": -2.4, "tumbles": -2.4, "drop": -1.6, "drops": -1.6,
	"negative": -1.6, "downgrade": -2.4, "downgraded": -2.4, "underperform": -2.4,
	"sell": -1.2, "weak": -1.6, "decline": -2.0, "declines": -2.0, "loss": -1.6,
	"losses": -1.6, "selloff": -2.8, "fall": -1.6, "falls": -1.6, "correction": -2.0,
	"default": -2.8, "fraud": -3.2, "scam": -3.2, "hack": -2.8, "hacked": -2.8,
	"exploit": -2.4, "investigation": -2.0, "lawsuit": -2.0, "bankruptcy": -3.2,
	"miss": -2.0, "misses": -2.0, "warning": -2.0, "concern": -1.2, "concerns": -1.2,
	"fear": -2.0, "fears": -2.0, "cut": -1.2, "delisted": -2.8, "ban": -2.4,
}

// multi-word expressions matched on the lowercased text before tokenizing.
var defaultPhrases = map[string]float64{
	"record high":      2.8,
	"all-time high":    2.8,
	"beats estimates":  1.0,
	"sell-off":         -2.8,
	"profit warning":   -1.6,
	"misses estimates": -1.0,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "neither": {}, "nor": {},
	"isn't": {}, "aren't": {}, "wasn't": {}, "weren't": {}, "don't": {},
	"doesn't": {}, "didn't": {}, "won't": {}, "can't": {}, "cannot": {},
}

// Lexicon scores text by summing word valences from a market vocabulary.
type Lexicon struct {
	words   map[string]float64
	phrases []phrase // longest first
}

type phrase struct {
	text    string
	valence float64
}

// NewLexicon returns a scorer with the built-in market vocabulary.
func NewLexicon() *Lexicon {
	return NewLexiconWith(defaultLexicon, defaultPhrases)
}

// NewLexiconWith returns a scorer over custom word and phrase valences.
func NewLexiconWith(words, phrases map[string]float64) *Lexicon {
	return &Lexicon{words: words, phrases: sortPhrases(phrases)}
}

// sortPhrases orders phrases longest first so a phrase containing another
// is matched before it.
func sortPhrases(m map[string]float64) []phrase {
	out := make([]phrase, 0, len(m))
	for text, v := range m {
		out = append(out, phrase{text: text, valence: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].text) != len(out[j].text) {
			return len(out[i].text) > len(out[j].text)
		}
		return out[i].text < out[j].text
	})
	return out
}

// Score returns the compound score for text.
func (l *Lexicon) Score(text string) (float64, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, ErrEmptyText
	}

	// Matched phrases are blanked out so their words are not scored again.
	sum := 0.0
	for _, p := range l.phrases {
		if n := strings.Count(lower, p.text); n > 0 {
			sum += p.valence * float64(n)
			lower = strings.ReplaceAll(lower, p.text, " ")
		}
	}

	tokens := tokenize(lower)
	for i, tok := range tokens {
		v, ok := l.words[tok]
		if !ok {
			continue
		}
		if negated(tokens, i) {
			v *= negationScalar
		}
		sum += v
	}

	return compound(sum), nil
}

// compound squashes a summed valence into [-1, 1].
func compound(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normalizationAlpha)
	return utils.Clamp(score, -1, 1)
}

// negated reports whether one of the few tokens before i is a negation.
func negated(tokens []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}
	for _, tok := range tokens[start:i] {
		if _, ok := negations[tok]; ok {
			return true
		}
	}
	return false
}

// tokenize splits lowercase text into words, keeping apostrophes so
// contractions like "didn't" survive.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

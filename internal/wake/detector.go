// Package wake gates continuous-listening input on a fuzzy wake-phrase
// match. Exact matching is deliberately avoided: users cut off or
// mispronounce the phrase, and the recognizer upstream garbles it.
package wake

import (
	"strings"

	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/lexicon"
	"github.com/mikey/luca-assistant/internal/nlu"
)

// Detector matches utterances against the lexicon's wake phrases for the
// active language. Pure; no side effects.
type Detector struct {
	lex        *lexicon.Lexicon
	confidence float64
}

// NewDetector creates a detector that activates at the given similarity
// threshold (inclusive).
func NewDetector(lex *lexicon.Lexicon, confidence float64) *Detector {
	return &Detector{lex: lex, confidence: confidence}
}

// Detect reports whether the utterance activates the assistant and returns
// the utterance with the matched wake phrase removed.
func (d *Detector) Detect(text string, lang core.Language) (bool, string) {
	normalized := nlu.Normalize(text)
	if normalized == "" {
		return false, ""
	}
	tokens := strings.Fields(normalized)

	for _, phrase := range d.lex.WakePhrases(lang) {
		p := nlu.Normalize(phrase)
		window := len(strings.Fields(p))
		if window == 0 || window > len(tokens) {
			continue
		}
		for start := 0; start+window <= len(tokens); start++ {
			candidate := strings.Join(tokens[start:start+window], " ")
			if Similarity(candidate, p) >= d.confidence {
				remainder := append([]string{}, tokens[:start]...)
				remainder = append(remainder, tokens[start+window:]...)
				return true, strings.TrimSpace(strings.Join(remainder, " "))
			}
		}
	}
	return false, normalized
}

// Similarity is the edit-distance-normalized similarity of two strings in
// [0,1]: 1 − levenshtein/maxLen.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// tokenSplitPattern matches separator sequences between tokens. Letters
// and digits from any script count as token characters; subtitle text is
// frequently not English.
var tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

var foldCaser = cases.Fold()

// Normalize case-folds text for caseless comparison. Folding rather than
// lowercasing handles scripts where the two differ.
func Normalize(text string) string {
	return strings.TrimSpace(foldCaser.String(text))
}

// Tokenize splits text into case-folded tokens.
func Tokenize(text string) []string {
	folded := foldCaser.String(text)
	raw := tokenSplitPattern.Split(folded, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// TokenSet returns the set of distinct tokens in text.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// TokenSetRatio scores the token-set overlap of two texts in [0,1].
// The ratio is the overlap coefficient: shared distinct tokens divided by
// the smaller set's size, so reordered or partially merged captions still
// score high while unrelated lines score near zero.
func TokenSetRatio(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	small, large := setA, setB
	if len(setB) < len(setA) {
		small, large = setB, setA
	}
	shared := 0
	for token := range small {
		if _, ok := large[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

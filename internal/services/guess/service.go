package guess

import (
	"math"
	"strings"
)

// Result classifies a guess against the secret word
type Result int

const (
	Wrong Result = iota
	Close
	Exact
)

// Position multipliers for the first four correct guessers;
// everyone after the fourth gets the tail multiplier.
var positionMultipliers = []float64{2.0, 1.0, 0.75, 0.5}

const tailMultiplier = 0.25

// Normalize lowercases a guess and strips hyphens and whitespace.
// It is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Evaluate compares a guess against the secret word.
// Exact means the normalized strings are equal; Close means the
// Levenshtein distance between them is exactly 1.
func Evaluate(guess, secret string) Result {
	g := Normalize(guess)
	w := Normalize(secret)
	if g == "" || w == "" {
		return Wrong
	}
	if g == w {
		return Exact
	}
	if levenshtein(g, w) == 1 {
		return Close
	}
	return Wrong
}

// Score computes the points awarded to a correct guesser.
// guessPosition is 1-indexed order of correct guesses this round.
func Score(timeRemaining, totalTime, wordLength, guessPosition int) int {
	if totalTime <= 0 || timeRemaining < 0 || wordLength <= 0 || guessPosition < 1 {
		return 0
	}
	mult := tailMultiplier
	if guessPosition <= len(positionMultipliers) {
		mult = positionMultipliers[guessPosition-1]
	}
	raw := float64(wordLength) * 50 * (float64(timeRemaining) / float64(totalTime)) * mult
	return int(math.Floor(raw))
}

// DrawerShare computes the drawer's cut of a guesser's score.
// The drawer accrues this for every correct guesser in the round.
func DrawerShare(guesserScore, guessPosition int) int {
	if guesserScore <= 0 {
		return 0
	}
	if guessPosition == 1 {
		return int(math.Floor(float64(guesserScore) * 0.5))
	}
	return int(math.Floor(float64(guesserScore) * 0.3))
}

// levenshtein computes plain edit distance between two strings.
// Deliberately not Damerau: a transposition counts as distance 2,
// so transposed pairs are not treated as close guesses.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

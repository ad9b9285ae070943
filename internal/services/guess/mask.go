package guess

// Mask renders the character structure of the secret word for
// non-drawers: underscores for letters, spaces and dashes preserved,
// revealed positions shown as their letter.
func Mask(word string, revealed map[int]bool) string {
	out := []rune(word)
	for i, r := range out {
		if r == ' ' || r == '-' {
			continue
		}
		if revealed != nil && revealed[i] {
			continue
		}
		out[i] = '_'
	}
	return string(out)
}

// HintablePositions returns the indices of word eligible for hint
// reveals: every position that is not whitespace or a dash and is not
// already revealed.
func HintablePositions(word string, revealed map[int]bool) []int {
	var out []int
	for i, r := range []rune(word) {
		if r == ' ' || r == '-' {
			continue
		}
		if revealed != nil && revealed[i] {
			continue
		}
		out = append(out, i)
	}
	return out
}

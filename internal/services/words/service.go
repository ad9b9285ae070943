package words

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/drawblin/drawblin/internal/dependencies/random"
	"github.com/drawblin/drawblin/internal/model"
)

// MinCustomWords is the fewest custom words accepted for a
// custom-words-only game
const MinCustomWords = 10

// Service provides per-language word banks for round word selection
type Service struct {
	random random.Random

	mu    sync.RWMutex
	lists map[string][]string
}

// New creates a word bank preloaded with the built-in lists
func New(random random.Random) *Service {
	s := &Service{
		random: random,
		lists:  make(map[string][]string),
	}
	for lang, list := range builtinLists {
		s.lists[lang] = list
	}
	return s
}

// LoadFromFile loads a word list for a language from a file
// (one word per line), replacing any built-in list
func (s *Service) LoadFromFile(language, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return s.LoadWords(language, words)
}

// LoadWords directly loads a word list for a language
func (s *Service) LoadWords(language string, words []string) error {
	if len(words) == 0 {
		return model.ErrLanguageUnknown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[language] = words
	return nil
}

// HasLanguage reports whether a list is loaded for the language
func (s *Service) HasLanguage(language string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lists[language]
	return ok
}

// Draw returns n distinct random words for the language.
// If fewer than n words exist the whole list is returned shuffled.
func (s *Service) Draw(language string, n int) ([]string, error) {
	s.mu.RLock()
	list, ok := s.lists[language]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrLanguageUnknown
	}

	if n > len(list) {
		n = len(list)
	}
	perm := s.random.Perm(len(list))
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, list[idx])
	}
	return out, nil
}

// DrawMixed draws from custom words when customOnly is set and the
// custom list is large enough, otherwise from the language bank with
// custom words mixed into the candidate pool.
func (s *Service) DrawMixed(language string, n int, custom []string, customOnly bool) ([]string, error) {
	custom = CleanCustomWords(custom)
	if customOnly && len(custom) >= MinCustomWords {
		perm := s.random.Perm(len(custom))
		if n > len(custom) {
			n = len(custom)
		}
		out := make([]string, 0, n)
		for _, idx := range perm[:n] {
			out = append(out, custom[idx])
		}
		return out, nil
	}

	words, err := s.Draw(language, n)
	if err != nil {
		return nil, err
	}
	// Swap roughly half the draw for custom words when available
	for i := 0; i < len(words)/2 && len(custom) > 0; i++ {
		pick := s.random.Intn(len(custom))
		words[i] = custom[pick]
		custom = append(custom[:pick], custom[pick+1:]...)
	}
	return words, nil
}

// CleanCustomWords trims, lowercases and deduplicates a custom word list,
// dropping entries longer than 32 characters
func CleanCustomWords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || len(w) > 32 {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

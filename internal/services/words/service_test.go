package words

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/drawblin/drawblin/internal/dependencies/mocks"
	"github.com/drawblin/drawblin/internal/model"
)

type ServiceSuite struct {
	suite.Suite

	random  *mocks.MockRandom
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestBuiltinLanguagesPresent() {
	s.True(s.service.HasLanguage("en"))
	s.True(s.service.HasLanguage("de"))
	s.False(s.service.HasLanguage("xx"))
}

func (s *ServiceSuite) TestDrawUnknownLanguage() {
	_, err := s.service.Draw("xx", 3)
	s.ErrorIs(err, model.ErrLanguageUnknown)
}

func (s *ServiceSuite) TestDrawDistinctWords() {
	// Identity permutation: the first three list entries come back
	got, err := s.service.Draw("en", 3)
	s.Require().NoError(err)
	s.Len(got, 3)
	seen := map[string]bool{}
	for _, w := range got {
		s.False(seen[w], "duplicate word %q", w)
		seen[w] = true
	}
}

func (s *ServiceSuite) TestDrawClampsToListSize() {
	s.Require().NoError(s.service.LoadWords("tiny", []string{"a", "b"}))
	got, err := s.service.Draw("tiny", 5)
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *ServiceSuite) TestLoadWordsRejectsEmptyList() {
	s.ErrorIs(s.service.LoadWords("empty", nil), model.ErrLanguageUnknown)
}

func (s *ServiceSuite) TestLoadFromFileReplacesList() {
	path := filepath.Join(s.T().TempDir(), "words.txt")
	s.Require().NoError(os.WriteFile(path, []byte("alpha\n\n  beta  \ngamma\n"), 0600))

	s.Require().NoError(s.service.LoadFromFile("en", path))

	got, err := s.service.Draw("en", 3)
	s.Require().NoError(err)
	s.Equal([]string{"alpha", "beta", "gamma"}, got)
}

func (s *ServiceSuite) TestDrawMixedCustomOnlyNeedsEnoughWords() {
	custom := []string{"one", "two", "three"}
	got, err := s.service.DrawMixed("en", 3, custom, true)
	s.Require().NoError(err)
	// Too few custom words, so the draw falls back to the language
	// bank with customs mixed in
	s.Len(got, 3)
}

func (s *ServiceSuite) TestDrawMixedCustomOnly() {
	custom := []string{
		"w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8", "w9", "w10",
	}
	got, err := s.service.DrawMixed("en", 3, custom, true)
	s.Require().NoError(err)
	s.Equal([]string{"w1", "w2", "w3"}, got)
}

func (s *ServiceSuite) TestDrawMixedBlendsCustomWords() {
	s.random.QueuePerm([]int{0, 1, 2, 3})
	s.random.QueueIntn(1)

	got, err := s.service.DrawMixed("en", 4, []string{"zeta", "omega"}, false)
	s.Require().NoError(err)
	s.Len(got, 4)
	s.Contains(got, "omega")
}

func (s *ServiceSuite) TestCleanCustomWords() {
	in := []string{" Apple ", "apple", "", "BANANA", strings.Repeat("x", 40)}
	s.Equal([]string{"apple", "banana"}, CleanCustomWords(in))
}

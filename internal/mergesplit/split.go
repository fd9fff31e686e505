package mergesplit

import (
	"errors"
	"regexp"
	"strings"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/stream"
)

// ErrAmbiguous is returned when no page shows a clear enough discontinuity to
// split a merged document on, or when two pages score equally well.
var ErrAmbiguous = errors.New("merge point ambiguous")

var headerRe = regexp.MustCompile(`^(\d{1,2})\.\s+`)

// Separator locates the seam in a document that concatenates two independent
// sources and returns the two halves as sub-streams. Each candidate page is
// scored on discontinuity signals; the best page wins only if it clears the
// configured minimum score and leaves both halves big enough.
type Separator struct {
	rules config.Rules
}

func NewSeparator(rules config.Rules) *Separator {
	return &Separator{rules: rules}
}

// Split scores every eligible page as the start of the second source and
// slices the stream at the winner. Boundaries detected in each half map back
// to physical pages through the sub-stream's Offset.
func (sp *Separator) Split(s *stream.Stream) (*stream.Stream, *stream.Stream, error) {
	best, bestScore, tied := -1, 0.0, false
	for p := sp.rules.MergeMinPages; p <= s.Pages-sp.rules.MergeMinPages; p++ {
		score := sp.score(s, p)
		switch {
		case score > bestScore:
			best, bestScore, tied = p, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if best < 0 || bestScore < sp.rules.MergeMinScore || tied {
		return nil, nil, ErrAmbiguous
	}
	return s.Slice(0, best-1), s.Slice(best, s.Pages-1), nil
}

// score rates page p as the first page of the second source.
func (sp *Separator) score(s *stream.Stream, p int) float64 {
	col := s.PageCollapsed(p)
	score := 0.0

	// a second cover signature is the strongest signal
	if containsAny(col, sp.rules.SecondCoverKeywords) && containsAny(col, sp.rules.SecondCoverContext) {
		score += 6
	}

	// a question-list block reappearing mid-document
	if containsAll(col, sp.rules.ListHeadKeywords) {
		score += 4
	}

	// unit numbering resets to 1 after higher numbers were seen
	if firstHeaderNum(s, p) == 1 && maxHeaderNumBefore(s, p) > 1 {
		score += 3
	}

	// a blank page often precedes the seam
	if p > 0 && s.EmptyPage(p-1) {
		score++
	}

	return score
}

func firstHeaderNum(s *stream.Stream, p int) int {
	for _, ln := range s.Page(p) {
		if m := headerRe.FindStringSubmatch(ln.Text); m != nil {
			n := 0
			for _, r := range m[1] {
				n = n*10 + int(r-'0')
			}
			return n
		}
	}
	return 0
}

func maxHeaderNumBefore(s *stream.Stream, p int) int {
	max := 0
	for _, ln := range s.Lines() {
		if ln.Page >= p {
			break
		}
		if m := headerRe.FindStringSubmatch(ln.Text); m != nil {
			n := 0
			for _, r := range m[1] {
				n = n*10 + int(r-'0')
			}
			if n > max {
				max = n
			}
		}
	}
	return max
}

func containsAll(s string, kws []string) bool {
	for _, kw := range kws {
		if !strings.Contains(s, kw) {
			return false
		}
	}
	return len(kws) > 0
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

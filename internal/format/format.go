package format

import (
	"regexp"
	"strings"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/stream"
)

// Tag identifies the structural layout variant of a source document.
type Tag string

const (
	Standard    Tag = "standard"     // question-list block followed by indexed answer block
	Inline      Tag = "inline"       // question and answer markers interleaved in one block
	Menti       Tag = "menti"        // numbered headers corroborated by domain/difficulty cards
	Bare        Tag = "bare"         // isolated numeric headers, no keyword context
	Sparse      Tag = "sparse"       // image-only pages, needs OCR
	ProblemOnly Tag = "problem_only" // question sheet without answers
	Merged      Tag = "merged"       // two independent sources concatenated
	Unknown     Tag = "unknown"      // below confidence floor, route to manual review
)

// Result is a classification outcome.
type Result struct {
	Tag        Tag
	Confidence float64
}

var headerRe = regexp.MustCompile(`^(\d{1,2})\.\s+(.+)`)
var numOnlyRe = regexp.MustCompile(`^\d{1,2}\.?$`)

// Classifier assigns a format tag by running an ordered set of structural
// tests over the line stream. First match wins; the order goes from most to
// least specific. Classification is deterministic and side-effect free.
type Classifier struct {
	rules config.Rules
}

func NewClassifier(rules config.Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify inspects the stream and returns a tag with confidence. Documents
// where no test clears the confidence floor come back Unknown so they reach
// manual review instead of being treated as some default layout.
func (c *Classifier) Classify(s *stream.Stream) Result {
	if s.Pages == 0 {
		return Result{Tag: Unknown, Confidence: 0}
	}

	res := c.classify(s)
	if res.Confidence < c.rules.ClassifyFloor {
		return Result{Tag: Unknown, Confidence: res.Confidence}
	}
	return res
}

func (c *Classifier) classify(s *stream.Stream) Result {
	if c.isMerged(s) {
		return Result{Tag: Merged, Confidence: 0.9}
	}
	if ratio := s.EmptyPageRatio(); ratio >= c.rules.SparsePageRatio {
		return Result{Tag: Sparse, Confidence: ratio}
	}
	if conf := c.mentiConfidence(s); conf > 0 {
		return Result{Tag: Menti, Confidence: conf}
	}
	if c.isBare(s) {
		return Result{Tag: Bare, Confidence: c.rules.BareConfidence}
	}
	if c.isInline(s) {
		return Result{Tag: Inline, Confidence: 0.8}
	}
	if conf := c.problemOnlyConfidence(s); conf > 0 {
		return Result{Tag: ProblemOnly, Confidence: conf}
	}
	if c.hasListHead(s, 0) {
		if countNumberedHeaders(s, 0) >= 4 {
			return Result{Tag: Standard, Confidence: 0.9}
		}
		return Result{Tag: Standard, Confidence: 0.7}
	}
	return Result{Tag: Unknown, Confidence: 0}
}

// isMerged detects a second source's cover signature reappearing after the
// first document's own question-list cover.
func (c *Classifier) isMerged(s *stream.Stream) bool {
	if !c.hasListHead(s, 0) {
		return false
	}
	for p := 2; p < s.Pages; p++ {
		if c.hasSecondCover(s, p) {
			return true
		}
	}
	return false
}

// mentiConfidence checks for paired domain/difficulty cards. The strong form
// has the pair plus a star rating on the first page; the weak form is an
// isolated question anchor corroborated by a domain keyword within the
// configured window.
func (c *Classifier) mentiConfidence(s *stream.Stream) float64 {
	first := s.PageCollapsed(0)
	if containsAny(first, c.rules.DomainKeywords) &&
		strings.Contains(first, c.rules.DifficultyKeyword) &&
		strings.Contains(first, "★") {
		return 0.9
	}

	lines := s.Lines()
	for i, ln := range lines {
		if !ln.Isolated || !isQuestionAnchor(ln.Text, c.rules.QuestionAnchor) {
			continue
		}
		end := i + c.rules.MentiWindow
		if end >= len(lines) {
			end = len(lines) - 1
		}
		for j := i + 1; j <= end; j++ {
			if containsAny(stripSpaces(lines[j].Text), c.rules.DomainKeywords) {
				return 0.8
			}
		}
	}
	return 0
}

// isBare looks for isolated numeric headers with no keyword context at all.
func (c *Classifier) isBare(s *stream.Stream) bool {
	if c.hasListHead(s, 0) {
		return false
	}
	if containsAny(s.PageCollapsed(0), c.rules.IntentKeywords) {
		return false
	}
	n := 0
	for _, ln := range s.Lines() {
		if ln.Isolated && (numOnlyRe.MatchString(ln.Text) || headerRe.MatchString(ln.Text)) {
			n++
		}
	}
	return n >= 2
}

func (c *Classifier) isInline(s *stream.Stream) bool {
	return c.hasListHead(s, 0) &&
		containsAny(s.PageCollapsed(0), c.rules.IntentKeywords) &&
		countNumberedHeaders(s, 0) < 4
}

func (c *Classifier) problemOnlyConfidence(s *stream.Stream) float64 {
	if s.Pages == 1 {
		return 0.85
	}
	// recurring bare anchor and no explanation markers anywhere
	anchors := 0
	for _, ln := range s.Lines() {
		if isQuestionAnchor(ln.Text, c.rules.QuestionAnchor) {
			anchors++
		}
	}
	if anchors < 2 {
		return 0
	}
	for p := 0; p < s.Pages; p++ {
		col := s.PageCollapsed(p)
		if containsAny(col, c.rules.IntentKeywords) || containsAny(col, c.rules.DomainKeywords) {
			return 0
		}
	}
	return 0.7
}

func (c *Classifier) hasListHead(s *stream.Stream, page int) bool {
	return containsAll(s.PageCollapsed(page), c.rules.ListHeadKeywords)
}

func (c *Classifier) hasSecondCover(s *stream.Stream, page int) bool {
	col := s.PageCollapsed(page)
	return containsAny(col, c.rules.SecondCoverKeywords) &&
		containsAny(col, c.rules.SecondCoverContext)
}

func countNumberedHeaders(s *stream.Stream, page int) int {
	n := 0
	for _, ln := range s.Page(page) {
		if headerRe.MatchString(ln.Text) {
			n++
		}
	}
	return n
}

// isQuestionAnchor matches the standalone unit marker, with or without a
// trailing number ("문제" or "문제 7.").
func isQuestionAnchor(text, anchor string) bool {
	t := stripSpaces(text)
	if t == anchor {
		return true
	}
	if !strings.HasPrefix(t, anchor) {
		return false
	}
	rest := strings.TrimSuffix(t[len(anchor):], ".")
	if rest == "" {
		return true
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(rest) <= 2
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
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

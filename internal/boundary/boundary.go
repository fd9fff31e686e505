package boundary

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/format"
	"github.com/local/topicsplitter/internal/stream"
)

// Boundary is one unit's page range within a stream, start and end inclusive.
// Pages are stream-local; callers add the stream's Offset to get physical
// pages. A valid boundary set partitions [0, Pages) exactly.
type Boundary struct {
	StartPage  int
	EndPage    int
	Seq        int
	Title      string
	Domain     string
	Confidence float64
}

// ErrDeferred signals that boundaries cannot be derived yet because the
// document has no extractable text. The caller may retry after OCR.
var ErrDeferred = errors.New("boundary detection deferred: no extractable text")

// CoverageError reports a page-range defect that cannot be auto-corrected.
type CoverageError struct {
	Kind string // "gap" or "overlap"
	Page int
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("coverage %s at page %d", e.Kind, e.Page)
}

var (
	headerRe  = regexp.MustCompile(`^(\d{1,2})\.\s+(.+)`)
	numOnlyRe = regexp.MustCompile(`^(\d{1,2})\.?$`)
)

// candidate is a provisional unit start found by a strategy.
type candidate struct {
	page, line int
	seq        int
	title      string
	domain     string
	conf       float64
}

type strategy func(*stream.Stream) []candidate

// Detector turns a classified stream into a validated boundary set. Each
// format tag maps to its own detection strategy; everything downstream of the
// strategy (tie resolution, end assignment, coverage validation) is shared.
type Detector struct {
	rules      config.Rules
	strategies map[format.Tag]strategy
}

func NewDetector(rules config.Rules) *Detector {
	d := &Detector{rules: rules}
	d.strategies = map[format.Tag]strategy{
		format.Standard:    d.detectStandard,
		format.Menti:       d.detectMenti,
		format.Inline:      d.detectInline,
		format.Bare:        d.detectBare,
		format.ProblemOnly: d.detectProblemOnly,
	}
	return d
}

// Detect runs the strategy for tag and validates the result. Sparse documents
// get a single whole-document placeholder and ErrDeferred; merged and unknown
// documents have no strategy here and must be handled by the caller.
func (d *Detector) Detect(s *stream.Stream, tag format.Tag) ([]Boundary, error) {
	if tag == format.Sparse {
		return []Boundary{{StartPage: 0, EndPage: s.Pages - 1}}, ErrDeferred
	}
	strat, ok := d.strategies[tag]
	if !ok {
		return nil, fmt.Errorf("no boundary strategy for format %q", tag)
	}
	cands := strat(s)
	if len(cands) == 0 {
		return nil, &CoverageError{Kind: "gap", Page: 0}
	}
	return d.validate(s, d.assemble(s, cands))
}

// assemble orders candidates, resolves same-page collisions and assigns end
// pages. When two headers land on one page the earlier unit keeps the shared
// page and the later unit starts on the next; front matter before the first
// header is absorbed into the first unit.
func (d *Detector) assemble(s *stream.Stream, cands []candidate) []Boundary {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].page != cands[j].page {
			return cands[i].page < cands[j].page
		}
		return cands[i].line < cands[j].line
	})

	var bs []Boundary
	for _, c := range cands {
		start := c.page
		if n := len(bs); n > 0 && start <= bs[n-1].StartPage {
			start = bs[n-1].StartPage + 1
		}
		if start >= s.Pages {
			continue
		}
		bs = append(bs, Boundary{
			StartPage:  start,
			Seq:        c.seq,
			Title:      c.title,
			Domain:     c.domain,
			Confidence: c.conf,
		})
	}

	for i := range bs {
		if i+1 < len(bs) {
			bs[i].EndPage = bs[i+1].StartPage - 1
		} else {
			bs[i].EndPage = s.Pages - 1
		}
	}
	if len(bs) > 0 {
		bs[0].StartPage = 0
	}
	return bs
}

// validate enforces the full-coverage contract: the set starts at page 0,
// ends at the last page, and consecutive ranges are adjacent. A gap of
// exactly one blank page is closed by extending the earlier unit; any other
// gap or any overlap is a defect.
func (d *Detector) validate(s *stream.Stream, bs []Boundary) ([]Boundary, error) {
	if len(bs) == 0 {
		return nil, &CoverageError{Kind: "gap", Page: 0}
	}
	if bs[0].StartPage != 0 {
		return bs, &CoverageError{Kind: "gap", Page: 0}
	}
	for i := range bs {
		if bs[i].EndPage < bs[i].StartPage {
			return bs, &CoverageError{Kind: "overlap", Page: bs[i].StartPage}
		}
	}
	for i := 0; i < len(bs)-1; i++ {
		gap := bs[i+1].StartPage - bs[i].EndPage - 1
		switch {
		case gap == 0:
		case gap == 1 && s.EmptyPage(bs[i].EndPage+1):
			bs[i].EndPage++
		case gap > 0:
			return bs, &CoverageError{Kind: "gap", Page: bs[i].EndPage + 1}
		default:
			return bs, &CoverageError{Kind: "overlap", Page: bs[i+1].StartPage}
		}
	}
	last := &bs[len(bs)-1]
	switch tail := s.Pages - 1 - last.EndPage; {
	case tail == 0:
	case tail == 1 && s.EmptyPage(last.EndPage+1):
		last.EndPage++
	case tail > 0:
		return bs, &CoverageError{Kind: "gap", Page: last.EndPage + 1}
	default:
		return bs, &CoverageError{Kind: "overlap", Page: s.Pages - 1}
	}
	return bs, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
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

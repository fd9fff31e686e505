package stream

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Line is one extracted text line with page/line coordinates.
// Isolated marks a line alone in its visual block: blank separators (or a
// page edge) on both sides. Lines are immutable once built.
type Line struct {
	Page     int
	Index    int    // line index within the page's raw text
	Raw      string
	Text     string // NFC-normalized, trimmed
	Isolated bool
}

// Stream is the ordered line stream for one source document. It is built once
// from per-page extracted text and only queried afterwards.
type Stream struct {
	Pages  int
	Offset int // physical page in the source file that logical page 0 maps to

	lines     []Line
	pageFirst []int // index into lines where each page begins (len Pages+1)
	collapsed []string
	empty     []bool
	numEmpty  int
}

// Build constructs a Stream from raw per-page extracted text. A page with
// fewer than minChars non-whitespace characters counts as empty (image-only).
// Blank-line runs collapse into a single separator; only non-blank lines are
// kept, with isolation recorded on each line.
func Build(pages []string, minChars int) *Stream {
	s := &Stream{
		Pages:     len(pages),
		pageFirst: make([]int, len(pages)+1),
		collapsed: make([]string, len(pages)),
		empty:     make([]bool, len(pages)),
	}

	for p, raw := range pages {
		s.pageFirst[p] = len(s.lines)
		normalized := norm.NFC.String(raw)
		s.collapsed[p] = stripSpace(normalized)
		if len([]rune(s.collapsed[p])) < minChars {
			s.empty[p] = true
			s.numEmpty++
		}

		rawLines := strings.Split(normalized, "\n")
		for i, rl := range rawLines {
			text := strings.TrimSpace(rl)
			if text == "" {
				continue
			}
			prevBlank := i == 0 || strings.TrimSpace(rawLines[i-1]) == ""
			nextBlank := i == len(rawLines)-1 || strings.TrimSpace(rawLines[i+1]) == ""
			s.lines = append(s.lines, Line{
				Page:     p,
				Index:    i,
				Raw:      rl,
				Text:     text,
				Isolated: prevBlank && nextBlank,
			})
		}
	}
	s.pageFirst[len(pages)] = len(s.lines)
	return s
}

// Lines returns all non-blank lines in document order.
func (s *Stream) Lines() []Line { return s.lines }

// Page returns the non-blank lines of one page.
func (s *Stream) Page(p int) []Line {
	if p < 0 || p >= s.Pages {
		return nil
	}
	return s.lines[s.pageFirst[p]:s.pageFirst[p+1]]
}

// PageCollapsed returns the page's text with all whitespace removed. The
// extractor sometimes splits Korean keywords character-by-character across
// lines, so keyword tests run against this form.
func (s *Stream) PageCollapsed(p int) string {
	if p < 0 || p >= s.Pages {
		return ""
	}
	return s.collapsed[p]
}

// EmptyPage reports whether page p yielded no usable text.
func (s *Stream) EmptyPage(p int) bool {
	if p < 0 || p >= s.Pages {
		return true
	}
	return s.empty[p]
}

// EmptyPageRatio returns the fraction of pages with no usable text.
func (s *Stream) EmptyPageRatio() float64 {
	if s.Pages == 0 {
		return 1
	}
	return float64(s.numEmpty) / float64(s.Pages)
}

// Slice returns an independent sub-stream covering pages [from, to]
// (inclusive), rebased to page 0. Offset accumulates so boundaries found in
// the sub-stream can be mapped back to physical pages of the source file.
func (s *Stream) Slice(from, to int) *Stream {
	if from < 0 {
		from = 0
	}
	if to >= s.Pages {
		to = s.Pages - 1
	}
	sub := &Stream{
		Pages:     to - from + 1,
		Offset:    s.Offset + from,
		pageFirst: make([]int, to-from+2),
		collapsed: make([]string, 0, to-from+1),
		empty:     make([]bool, 0, to-from+1),
	}
	for p := from; p <= to; p++ {
		sub.pageFirst[p-from] = len(sub.lines)
		for _, ln := range s.Page(p) {
			ln.Page = p - from
			sub.lines = append(sub.lines, ln)
		}
		sub.collapsed = append(sub.collapsed, s.collapsed[p])
		sub.empty = append(sub.empty, s.empty[p])
		if s.empty[p] {
			sub.numEmpty++
		}
	}
	sub.pageFirst[sub.Pages] = len(sub.lines)
	return sub
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package boundary

import (
	"regexp"
	"strings"

	"github.com/local/topicsplitter/internal/stream"
)

var mentiNumRe = regexp.MustCompile(`^문\s*제\s*(\d{1,2})\.?\s*(.*)`)

// detectStandard finds isolated numbered headers in the answer block. The
// question-list page itself is skipped so its entries do not shadow the real
// unit starts. Sequence continuity is the corroboration signal: a header that
// continues the running numbering gets full confidence, an out-of-order one
// is kept but marked weak.
func (d *Detector) detectStandard(s *stream.Stream) []candidate {
	startPage := 0
	if containsAll(s.PageCollapsed(0), d.rules.ListHeadKeywords) {
		startPage = 1
	}

	var cands []candidate
	for _, ln := range s.Lines() {
		if ln.Page < startPage || !ln.Isolated {
			continue
		}
		m := headerRe.FindStringSubmatch(ln.Text)
		if m == nil {
			continue
		}
		seq := atoi(m[1])
		conf := d.rules.WeakConfidence
		if len(cands) == 0 || seq == cands[len(cands)-1].seq+1 {
			conf = d.rules.HeaderConfidence
		}
		cands = append(cands, candidate{
			page:  ln.Page,
			line:  ln.Index,
			seq:   seq,
			title: strings.TrimSpace(m[2]),
			conf:  conf,
		})
	}
	return cands
}

// detectMenti finds unit starts corroborated by domain/difficulty cards.
// Numbered headers ("문제 7. 제목" or a plain "7. 제목") are candidates on
// their own: corroboration inside the window lifts them to full confidence,
// its absence only demotes them to weak. A bare "문제" anchor line is too
// common in body text to stand alone, so it is dropped entirely unless
// corroborated.
func (d *Detector) detectMenti(s *stream.Stream) []candidate {
	lines := s.Lines()
	var cands []candidate
	for i, ln := range lines {
		if !ln.Isolated {
			continue
		}

		var seq int
		var title string
		numbered := false
		switch {
		case mentiNumRe.MatchString(ln.Text):
			m := mentiNumRe.FindStringSubmatch(ln.Text)
			seq, title, numbered = atoi(m[1]), strings.TrimSpace(m[2]), true
		case headerRe.MatchString(ln.Text):
			m := headerRe.FindStringSubmatch(ln.Text)
			seq, title, numbered = atoi(m[1]), strings.TrimSpace(m[2]), true
		case d.isAnchor(ln.Text):
			seq = len(cands) + 1
			title = titleAbove(lines, i)
		default:
			continue
		}

		domain, corroborated := d.corroborate(lines, i)
		if !numbered && !corroborated {
			continue
		}
		conf := d.rules.WeakConfidence
		if corroborated {
			conf = d.rules.HeaderConfidence
		}
		cands = append(cands, candidate{
			page:   ln.Page,
			line:   ln.Index,
			seq:    seq,
			title:  title,
			domain: domain,
			conf:   conf,
		})
	}
	return cands
}

// corroborate scans the window after line i for a domain or difficulty tag.
// The window is inclusive: a tag exactly MentiWindow lines below still
// counts, one line further is too far.
func (d *Detector) corroborate(lines []stream.Line, i int) (domain string, ok bool) {
	end := i + d.rules.MentiWindow
	if end >= len(lines) {
		end = len(lines) - 1
	}
	for j := i + 1; j <= end; j++ {
		text := stripSpaces(lines[j].Text)
		for _, kw := range d.rules.DomainKeywords {
			if idx := strings.Index(text, kw); idx >= 0 {
				domain = strings.Trim(text[idx+len(kw):], ":：-")
				if domain == "" && j+1 < len(lines) {
					domain = lines[j+1].Text
				}
				return domain, true
			}
		}
		if strings.Contains(text, d.rules.DifficultyKeyword) {
			return "", true
		}
	}
	return "", false
}

// detectBare treats every isolated numeric header as a unit start. With no
// keyword context there is nothing to corroborate against, so confidence is
// capped for the whole set.
func (d *Detector) detectBare(s *stream.Stream) []candidate {
	var cands []candidate
	for _, ln := range s.Lines() {
		if !ln.Isolated {
			continue
		}
		var seq int
		var title string
		if m := headerRe.FindStringSubmatch(ln.Text); m != nil {
			seq, title = atoi(m[1]), strings.TrimSpace(m[2])
		} else if m := numOnlyRe.FindStringSubmatch(ln.Text); m != nil {
			seq = atoi(m[1])
		} else {
			continue
		}
		cands = append(cands, candidate{
			page:  ln.Page,
			line:  ln.Index,
			seq:   seq,
			title: title,
			conf:  d.rules.BareConfidence,
		})
	}
	return cands
}

// detectProblemOnly segments a question sheet: each page opening with a
// question marker starts a unit. A sheet with no per-page markers (the usual
// single-page case) becomes one unit covering the whole document.
func (d *Detector) detectProblemOnly(s *stream.Stream) []candidate {
	var cands []candidate
	for p := 0; p < s.Pages; p++ {
		for _, ln := range s.Page(p) {
			if d.isAnchor(ln.Text) || (ln.Isolated && headerRe.MatchString(ln.Text)) {
				title := ""
				if m := headerRe.FindStringSubmatch(ln.Text); m != nil {
					title = strings.TrimSpace(m[2])
				}
				cands = append(cands, candidate{
					page:  p,
					line:  ln.Index,
					seq:   len(cands) + 1,
					title: title,
					conf:  d.rules.BareConfidence,
				})
				break
			}
		}
	}
	if len(cands) == 0 {
		cands = append(cands, candidate{seq: 1, conf: d.rules.WeakConfidence})
	}
	return cands
}

// isAnchor matches the standalone unit marker line ("문제" or "문제 7.").
func (d *Detector) isAnchor(text string) bool {
	t := stripSpaces(text)
	if t == d.rules.QuestionAnchor {
		return true
	}
	if !strings.HasPrefix(t, d.rules.QuestionAnchor) {
		return false
	}
	rest := strings.TrimSuffix(t[len(d.rules.QuestionAnchor):], ".")
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

// titleAbove returns the line above a bare anchor when it looks like a topic
// title rather than body text or another marker.
func titleAbove(lines []stream.Line, i int) string {
	if i == 0 {
		return ""
	}
	t := lines[i-1].Text
	if len([]rune(t)) < 2 || len([]rune(t)) > 80 {
		return ""
	}
	if headerRe.MatchString(t) || numOnlyRe.MatchString(t) {
		return ""
	}
	return t
}

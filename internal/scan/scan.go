// Package scan inventories the study-material tree and extracts the metadata
// encoded in directory and file names (cohort, week, subject, exam session).
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// DefaultGens are the cohort directories scanned under the base dir.
var DefaultGens = []string{"19기", "20기", "21기"}

// weekKeywords mark the path segment that names the week / course block.
var weekKeywords = []string{"주차", "오리엔테이션", "멘티출제", "특강", "합반", "자체모의", "서바이벌"}

var (
	sessionRe = regexp.MustCompile(`(\d)교시`)
	roundRe   = regexp.MustCompile(`(\d{3})회`)
)

// Source is one review PDF with the metadata read off its location.
type Source struct {
	Path       string `json:"path"`
	Filename   string `json:"filename"`
	Gen        string `json:"gen"`
	Week       string `json:"week"`
	Subject    string `json:"subject"`
	Session    string `json:"session"`
	ExamSource string `json:"exam_source,omitempty"` // KPC / ITPE / 동기회 / 아이리포 for exam packets
	ExamRound  string `json:"exam_round,omitempty"`  // e.g. "138회"
}

// FindReviewPDFs walks baseDir/<gen> for review PDFs. Copies ("복사본") are
// skipped. Files under a bak/ directory are kept only when no sibling of the
// same name exists outside it.
func FindReviewPDFs(baseDir string, gens []string) ([]Source, error) {
	if len(gens) == 0 {
		gens = DefaultGens
	}

	byKey := map[string]Source{}
	for _, gen := range gens {
		root := filepath.Join(baseDir, gen)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
				return nil
			}
			fn := norm.NFC.String(d.Name())
			if !strings.Contains(fn, "리뷰") || strings.Contains(fn, "복사본") {
				return nil
			}

			dir := norm.NFC.String(filepath.Dir(path))
			week := weekFromPath(dir)
			src := Source{
				Path:       path,
				Filename:   fn,
				Gen:        gen,
				Week:       week,
				Subject:    ExtractSubject(week, fn),
				Session:    ExtractSession(fn),
				ExamSource: DetectExamSource(fn),
				ExamRound:  DetectExamRound(fn),
			}

			key := fmt.Sprintf("%s/%s/%s", gen, week, fn)
			if prev, ok := byKey[key]; ok {
				// the main-dir copy wins over bak/
				if inBak(prev.Path) && !inBak(path) {
					byKey[key] = src
				}
				return nil
			}
			byKey[key] = src
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("gen", gen).Msg("scan skipped cohort dir")
		}
	}

	pdfs := make([]Source, 0, len(byKey))
	for _, src := range byKey {
		pdfs = append(pdfs, src)
	}
	sort.Slice(pdfs, func(i, j int) bool {
		a, b := pdfs[i], pdfs[j]
		if a.Gen != b.Gen {
			return a.Gen < b.Gen
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Session != b.Session {
			return a.Session < b.Session
		}
		return a.Filename < b.Filename
	})
	return pdfs, nil
}

func weekFromPath(dir string) string {
	week := "UNKNOWN"
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		for _, kw := range weekKeywords {
			if strings.Contains(part, kw) {
				week = part
			}
		}
	}
	return week
}

func inBak(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == "bak" {
			return true
		}
	}
	return false
}

// subjectPatterns are tried in order; every match contributes to the label.
var subjectPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"SW", regexp.MustCompile(`\bSW\b`)},
	{"DS", regexp.MustCompile(`\bDS\b`)},
	{"DB", regexp.MustCompile(`\bDB\b`)},
	{"SE", regexp.MustCompile(`\bSE\b`)},
	{"AI", regexp.MustCompile(`\bAI\b`)},
	{"CAOS", regexp.MustCompile(`\bCAOS\b`)},
	{"NW", regexp.MustCompile(`\bNW\b`)},
	{"경영", regexp.MustCompile(`경영`)},
	{"AL", regexp.MustCompile(`\bAL\b`)},
	{"OT", regexp.MustCompile(`\bOT\b`)},
}

// subjectFallbacks resolve weeks that carry no subject code.
var subjectFallbacks = []struct{ kw, subject string }{
	{"보안", "SE"},
	{"멘티출제", "전범위"},
	{"자체모의", "전범위"},
	{"합반", "전범위"},
	{"특강", "특강"},
	{"서바이벌", "특강"},
}

// ExtractSubject derives the subject label from the week segment and the
// filename. Several codes can apply to one file ("DB+SW").
func ExtractSubject(week, filename string) string {
	combined := strings.ToUpper(norm.NFC.String(week + " " + filename))
	var found []string
	for _, sp := range subjectPatterns {
		if sp.re.MatchString(combined) {
			found = append(found, sp.name)
		}
	}
	if len(found) > 0 {
		return strings.Join(found, "+")
	}
	w := norm.NFC.String(week)
	for _, fb := range subjectFallbacks {
		if strings.Contains(w, fb.kw) {
			return fb.subject
		}
	}
	return "ETC"
}

// ExtractSession reads the exam session ("2교시") off the filename.
// Files without one get the catch-all "0교시".
func ExtractSession(filename string) string {
	if m := sessionRe.FindStringSubmatch(norm.NFC.String(filename)); m != nil {
		return m[1] + "교시"
	}
	return "0교시"
}

// DetectExamSource names the publisher of an exam-explanation packet, or ""
// for regular weekly material.
func DetectExamSource(filename string) string {
	fn := norm.NFC.String(filename)
	upper := strings.ToUpper(fn)
	switch {
	case strings.Contains(upper, "KPC"):
		return "KPC"
	case strings.Contains(upper, "ITPE"):
		return "ITPE"
	case strings.Contains(fn, "동기회"):
		return "동기회"
	case strings.Contains(fn, "아이리포"):
		return "아이리포"
	}
	return ""
}

// DetectExamRound reads the exam round ("138회") off the filename, or "".
func DetectExamRound(filename string) string {
	if m := roundRe.FindStringSubmatch(norm.NFC.String(filename)); m != nil {
		return m[1] + "회"
	}
	return ""
}

// Package export writes one PDF per detected unit and verifies the result.
package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/local/topicsplitter/internal/scan"
	"github.com/local/topicsplitter/internal/segment"
)

// pages with less raw text than this count as image pages needing OCR
const imagePageChars = 50

var unsafeChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// Splitter writes a page subrange of src as a standalone PDF.
type Splitter interface {
	WriteSubrange(src, dst string, start, end int) error
}

// Reader re-opens written files for verification and samples source pages
// for the image-page count.
type Reader interface {
	PageCount(path string) (int, error)
	ExtractPageText(path string, page int) (string, error)
}

// Exported describes one written unit PDF.
type Exported struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Seq        int    `json:"seq"`
	Title      string `json:"title"`
	Pages      int    `json:"pages"`
	ImagePages int    `json:"image_pages"`
	NeedsOCR   bool   `json:"needs_ocr"`
}

// Writer turns segmentation results into unit PDFs under outDir, laid out as
// outDir/<gen>/<week>/<unit>.pdf.
type Writer struct {
	outDir   string
	splitter Splitter
	reader   Reader
}

func NewWriter(outDir string, splitter Splitter, reader Reader) *Writer {
	return &Writer{outDir: outDir, splitter: splitter, reader: reader}
}

// WriteUnits writes every unit of res and verifies each written file: the
// page count must match, and the title is loosely checked against the first
// page. Failing one unit does not abort the rest.
func (w *Writer) WriteUnits(src scan.Source, res segment.Result) ([]Exported, error) {
	dir := filepath.Join(w.outDir, src.Gen, SafeFilename(src.Week, 30))

	var out []Exported
	var firstErr error
	for _, u := range res.Units {
		name := UnitFileName(src, u.Seq, u.Title)
		dst := filepath.Join(dir, name)

		if err := w.splitter.WriteSubrange(src.Path, dst, u.StartPage, u.EndPage); err != nil {
			log.Error().Err(err).Str("unit", name).Msg("unit write failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		pages := u.EndPage - u.StartPage + 1
		if err := w.verify(dst, pages, u.Title); err != nil {
			log.Error().Err(err).Str("unit", name).Msg("unit verification failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		imgPages := w.countImagePages(src.Path, u.StartPage, u.EndPage)
		out = append(out, Exported{
			Filename:   name,
			Path:       dst,
			Seq:        u.Seq,
			Title:      u.Title,
			Pages:      pages,
			ImagePages: imgPages,
			NeedsOCR:   imgPages > 0,
		})
	}
	return out, firstErr
}

func (w *Writer) verify(path string, wantPages int, title string) error {
	n, err := w.reader.PageCount(path)
	if err != nil {
		return fmt.Errorf("reopen written unit: %w", err)
	}
	if n != wantPages {
		return fmt.Errorf("written unit has %d pages, want %d", n, wantPages)
	}
	if !w.titleOnFirstPage(path, title) {
		log.Warn().Str("path", path).Str("title", title).Msg("unit title not found on first page")
	}
	return nil
}

// titleOnFirstPage is a loose sanity check: the first ten runes of the title
// should survive on the written unit's first page. Extraction quirks make it
// advisory only.
func (w *Writer) titleOnFirstPage(path, title string) bool {
	key := strings.Join(strings.Fields(title), "")
	if key == "" {
		return true
	}
	if r := []rune(key); len(r) > 10 {
		key = string(r[:10])
	}
	text, err := w.reader.ExtractPageText(path, 0)
	if err != nil {
		return false
	}
	return strings.Contains(strings.Join(strings.Fields(text), ""), key)
}

func (w *Writer) countImagePages(src string, start, end int) int {
	n := 0
	for p := start; p <= end; p++ {
		text, err := w.reader.ExtractPageText(src, p)
		if err != nil || len(strings.TrimSpace(text)) < imagePageChars {
			n++
		}
	}
	return n
}

// UnitFileName builds the catalog filename
// {gen}_{week}_{subject}_{session}_Qnn_{title}.pdf.
func UnitFileName(src scan.Source, seq int, title string) string {
	topic := SafeFilename(title, 60)
	if topic == "" {
		topic = "무제"
	}
	return fmt.Sprintf("%s_%s_%s_%s_Q%02d_%s.pdf",
		src.Gen, SafeFilename(src.Week, 20), src.Subject, src.Session, seq, topic)
}

// SafeFilename normalizes s to NFC, strips characters that are unsafe in
// filenames and truncates to maxLen runes.
func SafeFilename(s string, maxLen int) string {
	s = norm.NFC.String(s)
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxLen {
		s = strings.TrimRight(string(r[:maxLen]), " ")
	}
	return s
}

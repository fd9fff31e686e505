package pdfio

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"
)

// Reader opens source files with go-fitz for text and rendering and pdfcpu
// for structural queries. Detection goes by magic bytes, not filename.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

// Verify checks that the file really is a PDF.
func (r *Reader) Verify(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("detect file type: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return fmt.Errorf("not a pdf: %s (%s)", path, mtype.String())
	}
	return nil
}

// PageCount returns the page count of a PDF.
func (r *Reader) PageCount(path string) (int, error) {
	if err := r.Verify(path); err != nil {
		return 0, err
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// ExtractPageText extracts the raw text of one page, 0-based.
func (r *Reader) ExtractPageText(path string, page int) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, doc.NumPage())
	}
	text, err := doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", page, err)
	}
	return text, nil
}

// ExtractAllPages extracts the raw text of every page in one open/close.
func (r *Reader) ExtractAllPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, doc.NumPage())
	for i := range pages {
		text, err := doc.Text(i)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Str("pdf", path).Msg("failed to extract text from page")
			continue
		}
		pages[i] = text
	}
	return pages, nil
}

// RenderPagePNG renders one page (0-based) as PNG at the given DPI.
func (r *Reader) RenderPagePNG(path string, page, dpi int) ([]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page+1, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

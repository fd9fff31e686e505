// Package ocr recognizes text on image-only pages. It wraps the Tesseract
// engine via gosseract and needs the tesseract binary plus the Korean
// language pack installed (apt-get install tesseract-ocr tesseract-ocr-kor).
package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"

	"github.com/local/topicsplitter/internal/config"
)

// Renderer rasterizes one PDF page, 0-based.
type Renderer interface {
	RenderPagePNG(path string, page, dpi int) ([]byte, error)
}

// Engine runs page-by-page recognition over a rendered PDF range.
type Engine struct {
	renderer Renderer
	langs    []string
	dpi      int
}

func New(renderer Renderer, cfg config.OCRConfig) *Engine {
	return &Engine{
		renderer: renderer,
		langs:    strings.Split(cfg.Languages, "+"),
		dpi:      cfg.RenderDPI,
	}
}

// Available reports whether the tesseract binary can be found.
func (e *Engine) Available() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// PagesText renders and recognizes count pages starting at first (0-based).
// Each page runs in its own goroutine so cancellation is honored even while
// tesseract is mid-recognition; the abandoned page finishes in the background
// and its result is dropped.
func (e *Engine) PagesText(ctx context.Context, path string, first, count int) ([]string, error) {
	texts := make([]string, count)
	for i := 0; i < count; i++ {
		text, err := e.recognizePage(ctx, path, first+i)
		if err != nil {
			return nil, err
		}
		texts[i] = text
		log.Debug().Str("pdf", path).Int("page", first+i+1).Int("chars", len(text)).Msg("page recognized")
	}
	return texts, nil
}

func (e *Engine) recognizePage(ctx context.Context, path string, page int) (string, error) {
	type pageResult struct {
		text string
		err  error
	}
	done := make(chan pageResult, 1)

	// The goroutine owns its client so an abandoned page cannot race a Close.
	go func() {
		img, err := e.renderer.RenderPagePNG(path, page, e.dpi)
		if err != nil {
			done <- pageResult{err: fmt.Errorf("render page %d: %w", page+1, err)}
			return
		}
		client := gosseract.NewClient()
		defer client.Close()
		if err := client.SetLanguage(e.langs...); err != nil {
			done <- pageResult{err: fmt.Errorf("set ocr language: %w", err)}
			return
		}
		if err := client.SetImageFromBytes(img); err != nil {
			done <- pageResult{err: fmt.Errorf("set image for page %d: %w", page+1, err)}
			return
		}
		text, err := client.Text()
		if err != nil {
			done <- pageResult{err: fmt.Errorf("recognize page %d: %w", page+1, err)}
			return
		}
		done <- pageResult{text: text}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

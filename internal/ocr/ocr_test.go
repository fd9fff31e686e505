package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/topicsplitter/internal/config"
)

type blockingRenderer struct {
	release chan struct{}
}

func (r *blockingRenderer) RenderPagePNG(string, int, int) ([]byte, error) {
	<-r.release
	return nil, errors.New("released")
}

type failingRenderer struct{}

func (failingRenderer) RenderPagePNG(string, int, int) ([]byte, error) {
	return nil, errors.New("render broke")
}

func testEngine(r Renderer) *Engine {
	return New(r, config.OCRConfig{Languages: "kor+eng", RenderDPI: 150})
}

func TestPagesTextHonorsDeadlineMidPage(t *testing.T) {
	r := &blockingRenderer{release: make(chan struct{})}
	t.Cleanup(func() { close(r.release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := testEngine(r).PagesText(ctx, "doc.pdf", 0, 3)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPagesTextRenderError(t *testing.T) {
	_, err := testEngine(failingRenderer{}).PagesText(context.Background(), "doc.pdf", 0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render page 1")
}

func TestNewSplitsLanguages(t *testing.T) {
	e := testEngine(failingRenderer{})
	assert.Equal(t, []string{"kor", "eng"}, e.langs)
}

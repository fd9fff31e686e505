package export

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/topicsplitter/internal/boundary"
	"github.com/local/topicsplitter/internal/scan"
	"github.com/local/topicsplitter/internal/segment"
)

type fakeSplitter struct {
	written map[string][2]int
	fail    bool
}

func (f *fakeSplitter) WriteSubrange(_, dst string, start, end int) error {
	if f.fail {
		return errors.New("write failed")
	}
	if f.written == nil {
		f.written = map[string][2]int{}
	}
	f.written[dst] = [2]int{start, end}
	return nil
}

type fakeReader struct {
	written  *fakeSplitter
	srcPages []string
}

func (f *fakeReader) PageCount(path string) (int, error) {
	r, ok := f.written.written[path]
	if !ok {
		return 0, errors.New("no such file")
	}
	return r[1] - r[0] + 1, nil
}

func (f *fakeReader) ExtractPageText(_ string, p int) (string, error) {
	return f.srcPages[p], nil
}

func source() scan.Source {
	return scan.Source{
		Path: "/in/19기/12주차 DB/DB 리뷰 2교시.pdf",
		Gen:  "19기", Week: "12주차 DB", Subject: "DB", Session: "2교시",
	}
}

func TestWriteUnits(t *testing.T) {
	sp := &fakeSplitter{}
	rd := &fakeReader{written: sp, srcPages: []string{
		strings.Repeat("텍스트가 충분히 들어있는 본문 페이지입니다. ", 3),
		strings.Repeat("텍스트가 충분히 들어있는 본문 페이지입니다. ", 3),
		"", // image-only page
		strings.Repeat("텍스트가 충분히 들어있는 본문 페이지입니다. ", 3),
	}}
	w := NewWriter("/out", sp, rd)

	res := segment.Result{Units: []boundary.Boundary{
		{StartPage: 0, EndPage: 1, Seq: 1, Title: "데이터베이스 정규화"},
		{StartPage: 2, EndPage: 3, Seq: 2, Title: "트랜잭션 격리수준"},
	}}
	out, err := w.WriteUnits(source(), res)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "19기_12주차 DB_DB_2교시_Q01_데이터베이스 정규화.pdf", out[0].Filename)
	assert.Equal(t, filepath.Join("/out", "19기", "12주차 DB"), filepath.Dir(out[0].Path))
	assert.Equal(t, 2, out[0].Pages)
	assert.Equal(t, 0, out[0].ImagePages)
	assert.False(t, out[0].NeedsOCR)

	assert.Equal(t, 1, out[1].ImagePages)
	assert.True(t, out[1].NeedsOCR)
}

func TestWriteUnitsReportsFirstError(t *testing.T) {
	sp := &fakeSplitter{fail: true}
	w := NewWriter("/out", sp, &fakeReader{written: sp})

	res := segment.Result{Units: []boundary.Boundary{{StartPage: 0, EndPage: 1, Seq: 1, Title: "t"}}}
	out, err := w.WriteUnits(source(), res)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestTitleOnFirstPage(t *testing.T) {
	sp := &fakeSplitter{written: map[string][2]int{"/out/u.pdf": {0, 0}}}
	rd := &fakeReader{written: sp, srcPages: []string{"문제 1. 데이터베이스 정규화의 원리를 설명하시오"}}
	w := NewWriter("/out", sp, rd)

	assert.True(t, w.titleOnFirstPage("/out/u.pdf", "데이터베이스 정규화"))
	assert.True(t, w.titleOnFirstPage("/out/u.pdf", ""))
	assert.False(t, w.titleOnFirstPage("/out/u.pdf", "트랜잭션 격리수준"))
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", SafeFilename(`a/b:c`, 80))
	assert.Equal(t, "여러 공백 정리", SafeFilename("여러   공백\t정리", 80))
	assert.Equal(t, "가나다", SafeFilename("가나다라마", 3))
}

func TestUnitFileNameFallbackTitle(t *testing.T) {
	name := UnitFileName(source(), 3, "")
	assert.Equal(t, "19기_12주차 DB_DB_2교시_Q03_무제.pdf", name)
}

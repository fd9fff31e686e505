package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestFindReviewPDFs(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "19기", "12주차 DB", "DB 리뷰 2교시.pdf"))
	touch(t, filepath.Join(base, "19기", "12주차 DB", "DB 정리노트.pdf"))       // not a review
	touch(t, filepath.Join(base, "19기", "12주차 DB", "DB 리뷰 복사본.pdf"))    // copy
	touch(t, filepath.Join(base, "20기", "멘티출제 5주", "멘티 리뷰.pdf"))
	touch(t, filepath.Join(base, "21기", "기타자료", "노트 리뷰.txt"))          // not a pdf

	pdfs, err := FindReviewPDFs(base, nil)
	require.NoError(t, err)
	require.Len(t, pdfs, 2)

	assert.Equal(t, "19기", pdfs[0].Gen)
	assert.Equal(t, "12주차 DB", pdfs[0].Week)
	assert.Equal(t, "DB", pdfs[0].Subject)
	assert.Equal(t, "2교시", pdfs[0].Session)

	assert.Equal(t, "20기", pdfs[1].Gen)
	assert.Equal(t, "전범위", pdfs[1].Subject)
	assert.Equal(t, "0교시", pdfs[1].Session)
}

func TestFindReviewPDFsPrefersMainOverBak(t *testing.T) {
	base := t.TempDir()
	main := filepath.Join(base, "20기", "17주차 SW", "SW 리뷰.pdf")
	touch(t, main)
	touch(t, filepath.Join(base, "20기", "17주차 SW", "bak", "SW 리뷰.pdf"))

	pdfs, err := FindReviewPDFs(base, []string{"20기"})
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, main, pdfs[0].Path)
}

func TestFindReviewPDFsKeepsBakOnlyFile(t *testing.T) {
	base := t.TempDir()
	bak := filepath.Join(base, "20기", "17주차 SW", "bak", "SW 리뷰 1교시.pdf")
	touch(t, bak)

	pdfs, err := FindReviewPDFs(base, []string{"20기"})
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, bak, pdfs[0].Path)
}

func TestExtractSubject(t *testing.T) {
	assert.Equal(t, "DB", ExtractSubject("12주차 DB", "리뷰.pdf"))
	assert.Equal(t, "DB+SE", ExtractSubject("13주차 DB SE", "리뷰.pdf"))
	assert.Equal(t, "SE", ExtractSubject("9주차 보안", "리뷰.pdf"))
	assert.Equal(t, "특강", ExtractSubject("서바이벌 모의", "리뷰.pdf"))
	assert.Equal(t, "ETC", ExtractSubject("기타", "리뷰.pdf"))
}

func TestExtractSession(t *testing.T) {
	assert.Equal(t, "2교시", ExtractSession("DB 리뷰 2교시.pdf"))
	assert.Equal(t, "0교시", ExtractSession("DB 리뷰.pdf"))
}

func TestDetectExamSource(t *testing.T) {
	assert.Equal(t, "ITPE", DetectExamSource("ITPE 138관-2교시_v1.0.pdf"))
	assert.Equal(t, "KPC", DetectExamSource("kpc 137회 해설.pdf"))
	assert.Equal(t, "동기회", DetectExamSource("동기회 137회 리뷰.pdf"))
	assert.Equal(t, "", DetectExamSource("DB 리뷰 2교시.pdf"))
}

func TestDetectExamRound(t *testing.T) {
	assert.Equal(t, "138회", DetectExamRound("동기회 138회 해설 리뷰.pdf"))
	assert.Equal(t, "", DetectExamRound("DB 리뷰 2교시.pdf"))
}

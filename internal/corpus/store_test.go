package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndQueryUnits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := UnitRecord{
		RunID: "run1", Gen: "19기", Week: "12주차 DB", Subject: "DB", Session: "2교시",
		Source: "DB 리뷰 2교시.pdf", Seq: 1, Title: "데이터베이스 정규화",
		Text:   "문제 1. 데이터베이스 정규화에 대하여 설명하시오.",
		StartPage: 0, EndPage: 3, Pages: 4, ImagePages: 1, NeedsOCR: true,
		Format: "standard", Confidence: 0.9, Path: "/out/19기/Q01.pdf",
	}
	require.NoError(t, s.InsertUnit(ctx, u))
	require.NoError(t, s.InsertUnit(ctx, UnitRecord{
		RunID: "run1", Gen: "19기", Week: "12주차 DB", Subject: "DB", Session: "2교시",
		Source: "DB 리뷰 2교시.pdf", Seq: 2, Title: "트랜잭션 격리수준",
		StartPage: 4, EndPage: 7, Pages: 4, Format: "standard", Confidence: 0.9,
		Path: "/out/19기/Q02.pdf",
	}))

	units, err := s.UnitsByRun(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, u, units[0])
	assert.Equal(t, 2, units[1].Seq)

	none, err := s.UnitsByRun(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCountBySubject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, subject := range []string{"DB", "DB", "SW"} {
		require.NoError(t, s.InsertUnit(ctx, UnitRecord{
			RunID: "run1", Gen: "20기", Week: "w", Subject: subject, Session: "0교시",
			Source: "s.pdf", Seq: i + 1, Title: "t", Format: "bare", Path: "p",
		}))
	}

	counts, err := s.CountBySubject(ctx, "20기")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"DB": 2, "SW": 1}, counts)
}

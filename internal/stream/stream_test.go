package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolationFlags(t *testing.T) {
	page := "header\n\n1. 캐시메모리\n\nbody text\nmore body\ntail"
	s := Build([]string{page}, 10)

	lines := s.Lines()
	require.Len(t, lines, 5)

	// surrounded by blank separators on both sides
	assert.Equal(t, "1. 캐시메모리", lines[1].Text)
	assert.True(t, lines[1].Isolated)

	// adjacent to non-blank text on either side
	assert.Equal(t, "more body", lines[3].Text)
	assert.False(t, lines[3].Isolated)
	assert.Equal(t, "body text", lines[2].Text)
	assert.False(t, lines[2].Isolated)
}

func TestPageEdgeCountsAsSeparator(t *testing.T) {
	// a lone header at the very top of a page, blank line after
	s := Build([]string{"2. 정규화\n\nbody follows\nmore"}, 5)
	lines := s.Lines()
	require.NotEmpty(t, lines)
	assert.True(t, lines[0].Isolated)
}

func TestBlankRunCollapse(t *testing.T) {
	s := Build([]string{"a\n\n\n\n\nb"}, 1)
	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Isolated)
	assert.True(t, lines[1].Isolated)
	// original line indices survive collapsing
	assert.Equal(t, 0, lines[0].Index)
	assert.Equal(t, 5, lines[1].Index)
}

func TestEmptyPageRatio(t *testing.T) {
	s := Build([]string{"", "  \n ", "실제 본문 내용이 충분히 들어있는 페이지입니다 실제 본문"}, 10)
	assert.True(t, s.EmptyPage(0))
	assert.True(t, s.EmptyPage(1))
	assert.False(t, s.EmptyPage(2))
	assert.InDelta(t, 2.0/3.0, s.EmptyPageRatio(), 1e-9)
}

func TestCollapsedJoinsSplitKeywords(t *testing.T) {
	// the extractor can emit 출제영역 as one rune per line
	s := Build([]string{"출\n제\n영\n역\n난이도 ★★★"}, 1)
	assert.Contains(t, s.PageCollapsed(0), "출제영역")
	assert.Contains(t, s.PageCollapsed(0), "난이도")
}

func TestSliceRebasesAndAccumulatesOffset(t *testing.T) {
	pages := []string{"p0", "p1 내용", "p2 내용", "p3 내용", "p4 내용"}
	s := Build(pages, 1)
	sub := s.Slice(2, 4)

	assert.Equal(t, 3, sub.Pages)
	assert.Equal(t, 2, sub.Offset)
	require.NotEmpty(t, sub.Page(0))
	assert.Equal(t, 0, sub.Page(0)[0].Page)
	assert.Equal(t, "p2 내용", sub.Page(0)[0].Text)

	// slicing a slice accumulates offsets
	subsub := sub.Slice(1, 2)
	assert.Equal(t, 3, subsub.Offset)
}

package mergesplit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/stream"
)

func mergedPages(first, second int) []string {
	pages := make([]string, 0, first+second)
	pages = append(pages, "다음 문제 중 2문제를 선택하여 설명하시오.\n1. 캐시메모리 일관성\n2. 데이터베이스 정규화")
	for i := 1; i < first; i++ {
		pages = append(pages, fmt.Sprintf("첫 번째 자료 %d페이지의 해설 본문이 이어집니다.", i))
	}
	pages = append(pages, "아이리포 기술사회 139회 대비 자료\n두 번째 자료 표지입니다.")
	for i := 1; i < second; i++ {
		pages = append(pages, fmt.Sprintf("두 번째 자료 %d페이지의 해설 본문이 이어집니다.", i))
	}
	return pages
}

func TestSplitFindsSingleDiscontinuity(t *testing.T) {
	rules := config.DefaultRules()
	s := stream.Build(mergedPages(50, 40), rules.MinPageChars)
	require.Equal(t, 90, s.Pages)

	a, b, err := NewSeparator(rules).Split(s)
	require.NoError(t, err)
	assert.Equal(t, 50, a.Pages)
	assert.Equal(t, 40, b.Pages)
	assert.Equal(t, 0, a.Offset)
	assert.Equal(t, 50, b.Offset)
}

func TestSplitAmbiguousWithoutDiscontinuity(t *testing.T) {
	rules := config.DefaultRules()
	pages := make([]string, 20)
	for i := range pages {
		pages[i] = fmt.Sprintf("아무 이음매 신호가 없는 %d페이지 본문입니다.", i)
	}
	_, _, err := NewSeparator(rules).Split(stream.Build(pages, rules.MinPageChars))
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestSplitIgnoresSeamTooCloseToEdge(t *testing.T) {
	rules := config.DefaultRules()
	// the cover lands on page 1, inside the minimum-half margin
	pages := []string{
		"첫 페이지 본문 내용이 들어있는 페이지입니다.",
		"아이리포 기술사회 대비 자료 표지입니다.",
		"본문 내용이 이어지는 페이지입니다.",
		"본문 내용이 이어지는 페이지입니다.",
		"본문 내용이 이어지는 페이지입니다.",
	}
	_, _, err := NewSeparator(rules).Split(stream.Build(pages, rules.MinPageChars))
	assert.ErrorIs(t, err, ErrAmbiguous)
}

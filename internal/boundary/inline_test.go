package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/format"
)

func TestUnitFSMCycle(t *testing.T) {
	var m unitFSM
	assert.Equal(t, awaitingQuestion, m.state)

	assert.False(t, m.step(evBodyLine))
	assert.Equal(t, awaitingQuestion, m.state)

	assert.True(t, m.step(evQuestionHeader))
	assert.Equal(t, inQuestion, m.state)

	assert.False(t, m.step(evBodyLine))
	assert.False(t, m.step(evAnswerMarker))
	assert.Equal(t, awaitingAnswer, m.state)

	assert.False(t, m.step(evBodyLine))
	assert.Equal(t, inAnswer, m.state)

	// next question header closes the cycle and opens the next unit
	assert.True(t, m.step(evQuestionHeader))
	assert.Equal(t, inQuestion, m.state)
}

func TestUnitFSMQuestionWithoutAnswer(t *testing.T) {
	var m unitFSM
	require.True(t, m.step(evQuestionHeader))
	// a second header with no answer block in between still opens a unit
	assert.True(t, m.step(evQuestionHeader))
	assert.Equal(t, inQuestion, m.state)
}

func TestInlineDetectsInterleavedUnits(t *testing.T) {
	pages := []string{
		"다음 문제 중 1문제를 선택하여 설명하시오.\n\n1. 캐시메모리 일관성\n\n출제의도\n캐시 일관성 프로토콜의 이해",
		"답안 본문이 이어집니다.\n추가 설명이 계속됩니다.",
		"2. 데이터베이스 정규화\n\n출제의도\n정규화 단계의 이해\n답안 본문이 시작됩니다.",
		"답안 본문이 이어지는 마지막 페이지입니다.",
	}
	d := NewDetector(config.DefaultRules())
	bs, err := d.Detect(build(pages...), format.Inline)
	require.NoError(t, err)
	require.Len(t, bs, 2)

	assert.Equal(t, 0, bs[0].StartPage)
	assert.Equal(t, 1, bs[0].EndPage)
	assert.Equal(t, 2, bs[1].StartPage)
	assert.Equal(t, 3, bs[1].EndPage)
	assert.Equal(t, 1, bs[0].Seq)
	assert.Equal(t, 2, bs[1].Seq)
	assert.Equal(t, "캐시메모리 일관성", bs[0].Title)
}

func TestInlineIgnoresRestartedListInsideAnswer(t *testing.T) {
	pages := []string{
		"1. 캐시메모리 일관성\n\n출제의도\n캐시 일관성의 이해\n답안 본문이 시작됩니다.",
		// a numbered list restarting at 1 inside the answer body
		"1. 정의\n스누핑 기반 프로토콜의 정의입니다.\n디렉터리 기반 방식도 있습니다.",
		"2. 데이터베이스 정규화\n\n출제의도\n정규화의 이해\n답안 본문이 시작됩니다.",
	}
	d := NewDetector(config.DefaultRules())
	bs, err := d.Detect(build(pages...), format.Inline)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, 0, bs[0].StartPage)
	assert.Equal(t, 1, bs[0].EndPage)
	assert.Equal(t, 2, bs[1].StartPage)
	assert.Equal(t, 2, bs[1].EndPage)
}

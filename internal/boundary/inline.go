package boundary

import (
	"strings"

	"github.com/local/topicsplitter/internal/stream"
)

// The inline format interleaves question and answer blocks in one run of
// text, so unit starts cannot be read off headers alone: a numbered line
// inside an answer body must not open a new unit. An explicit state machine
// tracks the question/answer cycle and only a header seen in the right state
// opens a unit.

type fsmState int

const (
	awaitingQuestion fsmState = iota
	inQuestion
	awaitingAnswer
	inAnswer
)

func (st fsmState) String() string {
	switch st {
	case awaitingQuestion:
		return "awaiting_question"
	case inQuestion:
		return "in_question"
	case awaitingAnswer:
		return "awaiting_answer"
	case inAnswer:
		return "in_answer"
	}
	return "invalid"
}

type fsmEvent int

const (
	evQuestionHeader fsmEvent = iota
	evAnswerMarker
	evBodyLine
)

// unitFSM cycles awaiting_question -> in_question -> awaiting_answer ->
// in_answer and back on the next question header. step reports whether the
// event opened a new unit.
type unitFSM struct {
	state fsmState
}

func (m *unitFSM) step(ev fsmEvent) (opens bool) {
	switch m.state {
	case awaitingQuestion:
		if ev == evQuestionHeader {
			m.state = inQuestion
			return true
		}
	case inQuestion:
		switch ev {
		case evAnswerMarker:
			m.state = awaitingAnswer
		case evQuestionHeader:
			// question with no answer block, the next unit starts anyway
			return true
		}
	case awaitingAnswer:
		switch ev {
		case evBodyLine:
			m.state = inAnswer
		case evQuestionHeader:
			m.state = inQuestion
			return true
		}
	case inAnswer:
		if ev == evQuestionHeader {
			m.state = inQuestion
			return true
		}
	}
	return false
}

// detectInline walks the stream through the unit FSM. A numbered line counts
// as a question header only when it continues the running sequence, which
// keeps numbered list items inside answers from opening units.
func (d *Detector) detectInline(s *stream.Stream) []candidate {
	var (
		fsm     unitFSM
		cands   []candidate
		lastSeq int
	)
	for _, ln := range s.Lines() {
		ev := evBodyLine
		seq, title := 0, ""
		if m := headerRe.FindStringSubmatch(ln.Text); m != nil {
			n := atoi(m[1])
			if n == lastSeq+1 || (lastSeq == 0 && n == 1) {
				ev, seq, title = evQuestionHeader, n, strings.TrimSpace(m[2])
			}
		} else if containsAny(stripSpaces(ln.Text), d.rules.IntentKeywords) {
			ev = evAnswerMarker
		}

		if fsm.step(ev) {
			lastSeq = seq
			cands = append(cands, candidate{
				page:  ln.Page,
				line:  ln.Index,
				seq:   seq,
				title: title,
				conf:  0.8,
			})
		}
	}
	return cands
}

package internal

import (
	"strings"
	"time"
)

// RevealState is the disclosure stage of an assistant message
type RevealState int

const (
	// StateTyping: only the revealed prefix of the content is visible;
	// chart, table and detail panel stay suppressed.
	StateTyping RevealState = iota
	// StateRevealed: full content plus structured payload are visible.
	// Terminal; there is no way back.
	StateRevealed
)

// DefaultTypingInterval is the fixed per-token reveal delay. Total reveal
// duration is proportional to token count.
const DefaultTypingInterval = 100 * time.Millisecond

// CaretBlinkInterval drives the blinking caret shown while typing
const CaretBlinkInterval = 500 * time.Millisecond

// Sequencer is the per-message state machine gating disclosure of
// structured content until the text animation completes. It owns no timer:
// the UI layer calls Advance on each tick and stops ticking when the
// machine reports Revealed or when its view is torn down. Abandoning a
// Sequencer mid-animation is the cancellation story; a fresh message gets
// a fresh machine.
type Sequencer struct {
	content string
	tokens  []string
	shown   int
	state   RevealState
}

// NewSequencer starts a machine in Typing state over the whitespace tokens
// of content. Empty content still starts in Typing and completes on the
// first tick.
func NewSequencer(content string) *Sequencer {
	return &Sequencer{
		content: content,
		tokens:  strings.Fields(content),
	}
}

// State returns the current disclosure stage
func (s *Sequencer) State() RevealState {
	return s.state
}

// Revealed reports whether the animation has completed
func (s *Sequencer) Revealed() bool {
	return s.state == StateRevealed
}

// Advance reveals one more token. It returns true exactly once: on the
// tick that consumes the last token and transitions to Revealed. Further
// calls are no-ops.
func (s *Sequencer) Advance() bool {
	if s.state == StateRevealed {
		return false
	}
	if s.shown < len(s.tokens) {
		s.shown++
	}
	if s.shown >= len(s.tokens) {
		s.state = StateRevealed
		return true
	}
	return false
}

// Visible returns the currently disclosed text: the revealed token prefix
// while typing, the verbatim content once revealed.
func (s *Sequencer) Visible() string {
	if s.state == StateRevealed {
		return s.content
	}
	return strings.Join(s.tokens[:s.shown], " ")
}

// Remaining returns how many tokens are still hidden
func (s *Sequencer) Remaining() int {
	if s.shown > len(s.tokens) {
		return 0
	}
	return len(s.tokens) - s.shown
}

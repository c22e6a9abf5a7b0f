package discord

import (
	"testing"

	"github.com/girlyearning/nyx/internal/session"
)

func TestComfortTurnLimitReachedDespiteTrimming(t *testing.T) {
	sess := &session.Session{Data: &comfortState{}}

	cappedAt := 0
	for i := 1; i <= comfortTurnCap+5; i++ {
		capped := appendComfortUserTurn(sess, "u1", "how are you")
		sess.AppendTurn(session.BotTurn("here with you"), comfortTurnCap)
		if capped && cappedAt == 0 {
			cappedAt = i
		}
	}

	if cappedAt != comfortTurnCap {
		t.Errorf("Expected limit at user turn %d, got %d", comfortTurnCap, cappedAt)
	}
	// The trimmed transcript alone undercounts user turns, so the
	// session must track them separately.
	if len(sess.Turns) != comfortTurnCap {
		t.Errorf("Expected transcript trimmed to %d turns, got %d", comfortTurnCap, len(sess.Turns))
	}
	if sess.UserTurnCount() >= comfortTurnCap {
		t.Errorf("Expected trimmed transcript to hold fewer than %d user turns, got %d", comfortTurnCap, sess.UserTurnCount())
	}
}

func TestComfortTurnCountIgnoresForeignPayload(t *testing.T) {
	sess := &session.Session{}
	if capped := appendComfortUserTurn(sess, "u1", "hello"); capped {
		t.Error("Session without comfort state reported a turn limit")
	}
	if len(sess.Turns) != 1 {
		t.Errorf("Expected the turn recorded anyway, got %d turns", len(sess.Turns))
	}
}

package session

import (
	"errors"
	"testing"
)

func TestStartCollisionFails(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Start(Key("comfort", "42"), "comfort", StateSelecting); err != nil {
		t.Fatalf("First Start failed: %v", err)
	}
	_, err := reg.Start(Key("comfort", "42"), "comfort", StateSelecting)
	if !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("Expected ErrAlreadyActive, got %v", err)
	}
}

func TestStartWithConfiguresBeforePublishing(t *testing.T) {
	reg := NewRegistry()
	key := Key("wordhunt", "easy:chan-3")

	_, err := reg.StartWith(key, "wordhunt", StateActive, func(s *Session) {
		s.ChannelID = "chan-3"
		s.Data = []string{"apple", "berry"}
	})
	if err != nil {
		t.Fatalf("StartWith failed: %v", err)
	}

	// Any reader going through the registry sees the configured fields.
	var channelID string
	var words []string
	if ok := reg.Update(key, func(s *Session) {
		channelID = s.ChannelID
		words, _ = s.Data.([]string)
	}); !ok {
		t.Fatal("Session missing after StartWith")
	}
	if channelID != "chan-3" {
		t.Errorf("ChannelID = %q, expected %q", channelID, "chan-3")
	}
	if len(words) != 2 {
		t.Errorf("Expected configured payload to survive, got %v", words)
	}
}

func TestStartWithCollisionFails(t *testing.T) {
	reg := NewRegistry()
	key := Key("comfort", "user-1")
	if _, err := reg.StartWith(key, "comfort", StateSelecting, nil); err != nil {
		t.Fatalf("First StartWith failed: %v", err)
	}

	configured := false
	_, err := reg.StartWith(key, "comfort", StateSelecting, func(s *Session) { configured = true })
	if !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("Expected ErrAlreadyActive, got %v", err)
	}
	if configured {
		t.Error("Configure ran for a colliding key")
	}
}

func TestNamespacesDoNotCollide(t *testing.T) {
	reg := NewRegistry()

	// A chat session and a game session in the same channel coexist.
	if _, err := reg.Start(Key("asylum", "chan-9"), "asylumchat", StateSelecting); err != nil {
		t.Fatalf("asylum Start failed: %v", err)
	}
	if _, err := reg.Start(Key("unscramble", "chan-9"), "unscramble", StateActive); err != nil {
		t.Errorf("unscramble Start in same channel failed: %v", err)
	}
}

func TestUpdateAbsentKeyIsNoOp(t *testing.T) {
	reg := NewRegistry()

	called := false
	if ok := reg.Update("comfort:missing", func(s *Session) { called = true }); ok {
		t.Error("Update on absent key reported success")
	}
	if called {
		t.Error("Mutator ran for absent key")
	}
}

func TestUpdateTransitionsState(t *testing.T) {
	reg := NewRegistry()
	key := Key("comfort", "42")
	if _, err := reg.Start(key, "comfort", StateSelecting); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	reg.Update(key, func(s *Session) {
		s.State = StateActive
		s.Mode = "anxiety"
	})

	s, ok := reg.Get(key)
	if !ok {
		t.Fatal("Session missing after Update")
	}
	if s.State != StateActive || s.Mode != "anxiety" {
		t.Errorf("Expected active/anxiety, got %s/%s", s.State, s.Mode)
	}
}

func TestEndReturnsRecordForAccounting(t *testing.T) {
	reg := NewRegistry()
	key := Key("unscramble", "chan-1")
	if _, err := reg.Start(key, "unscramble", StateActive); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	reg.Update(key, func(s *Session) {
		s.AppendTurn(UserTurn("u1", "guess"), 0)
	})

	ended, ok := reg.End(key)
	if !ok {
		t.Fatal("End did not return the session")
	}
	if ended.State != StateEnded {
		t.Errorf("Ended session state = %s, expected %s", ended.State, StateEnded)
	}
	if len(ended.Turns) != 1 {
		t.Errorf("Ended session lost its transcript: %d turns", len(ended.Turns))
	}
	if _, ok := reg.Get(key); ok {
		t.Error("Session still present after End")
	}
	if _, ok := reg.End(key); ok {
		t.Error("Second End returned a session")
	}
}

func TestNoUpdateAfterEnded(t *testing.T) {
	reg := NewRegistry()
	key := Key("comfort", "7")
	if _, err := reg.Start(key, "comfort", StateActive); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	reg.End(key)

	if ok := reg.Update(key, func(s *Session) { s.State = StateActive }); ok {
		t.Error("Update succeeded after End")
	}
}

func TestTranscriptCapAndRoles(t *testing.T) {
	s := &Session{}
	for i := 0; i < 30; i++ {
		s.AppendTurn(UserTurn("u1", "hello"), 25)
		s.AppendTurn(BotTurn("hi"), 25)
	}

	if len(s.Turns) != 25 {
		t.Errorf("Expected transcript capped at 25, got %d", len(s.Turns))
	}
	if s.UserTurnCount() == 0 {
		t.Error("Expected surviving user turns in capped transcript")
	}
	for _, turn := range s.Turns {
		if turn.Role != RoleUser && turn.Role != RoleBot {
			t.Errorf("Unexpected turn role %q", turn.Role)
		}
	}
}

func TestKeysFiltersByNamespace(t *testing.T) {
	reg := NewRegistry()
	reg.Start(Key("comfort", "1"), "comfort", StateActive)
	reg.Start(Key("comfort", "2"), "comfort", StateActive)
	reg.Start(Key("asylum", "3"), "asylumchat", StateActive)

	keys := reg.Keys("comfort")
	if len(keys) != 2 {
		t.Errorf("Expected 2 comfort keys, got %d: %v", len(keys), keys)
	}
	if reg.Len() != 3 {
		t.Errorf("Expected 3 total sessions, got %d", reg.Len())
	}
}

package discord

import "testing"

func TestWordHuntKeySeparatesDifficulties(t *testing.T) {
	easy := wordHuntKey(wordHuntEasy, "chan-1")
	hard := wordHuntKey(wordHuntHard, "chan-1")
	if easy == hard {
		t.Error("Easy and hard hunts must not share a session key")
	}
	if easy != "wordhunt:easy:chan-1" {
		t.Errorf("Unexpected key format: %q", easy)
	}
	if other := wordHuntKey(wordHuntEasy, "chan-2"); other == easy {
		t.Error("Different channels must not share a session key")
	}
}

package models

import "testing"

func TestNormalizePair(t *testing.T) {
	for _, tc := range []struct {
		a, b, low, high uint
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{7, 7, 7, 7},
	} {
		low, high := NormalizePair(tc.a, tc.b)
		if low != tc.low || high != tc.high {
			t.Fatalf("NormalizePair(%d, %d) = (%d, %d), want (%d, %d)", tc.a, tc.b, low, high, tc.low, tc.high)
		}
	}
}

func TestParticipantHelpers(t *testing.T) {
	c := Conversation{UserLowID: 3, UserHighID: 9}

	if !c.HasParticipant(3) || !c.HasParticipant(9) {
		t.Fatalf("expected both 3 and 9 to be participants")
	}
	if c.HasParticipant(4) {
		t.Fatalf("expected 4 not to be a participant")
	}
	if c.OtherParticipant(3) != 9 || c.OtherParticipant(9) != 3 {
		t.Fatalf("expected OtherParticipant to return the opposite side")
	}
}

package session

import "testing"

func TestNew_AssignsUniqueIDs(t *testing.T) {
	s1 := New()
	s2 := New()

	if s1.PlayerID() == "" {
		t.Fatal("session should have an id")
	}
	if s1.PlayerID() == s2.PlayerID() {
		t.Error("sessions should have distinct ids")
	}
	if s1.Closed() {
		t.Error("new session should not be closed")
	}
}

func TestUsername(t *testing.T) {
	s := New()
	if s.Username() != "" {
		t.Errorf("username = %q, want empty", s.Username())
	}
	s.SetUsername("naruto")
	if s.Username() != "naruto" {
		t.Errorf("username = %q, want naruto", s.Username())
	}
}

func TestClose_OnlyFirstCallWins(t *testing.T) {
	s := New()

	if !s.Close(CloseReasonClientGone) {
		t.Fatal("first close should return true")
	}
	if s.Close(CloseReasonServerShutdown) {
		t.Error("second close should return false")
	}
	if !s.Closed() {
		t.Error("session should be closed")
	}
	if s.Reason() != CloseReasonClientGone {
		t.Errorf("reason = %d, want client gone", s.Reason())
	}
}

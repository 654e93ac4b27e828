package entity

import (
	"testing"
	"time"
)

func TestChatSessionReset(t *testing.T) {
	now := time.Now()
	s := NewChatSession("abc", now)
	if !s.IsInitial() {
		t.Fatal("new session should be initial")
	}

	s.Context = ContextAwaitingTipPermission
	s.UserName = "Budi"
	s.CurrentTopic = "stress"
	s.LastTag = "stress_due_to_academic"
	s.FailCount = 2

	s.Reset()
	if !s.IsInitial() {
		t.Errorf("expected initial state after reset, got %+v", s)
	}
	if s.ID != "abc" || !s.CreatedAt.Equal(now) {
		t.Errorf("reset must keep identity, got %+v", s)
	}

	s.Reset()
	if !s.IsInitial() {
		t.Error("reset should be idempotent")
	}
}

func TestDialogueContextValid(t *testing.T) {
	for _, c := range []DialogueContext{
		ContextNone, ContextAwaitingName, ContextAwaitingFeeling,
		ContextAwaitingReason, ContextAwaitingTipPermission, ContextConversationEnd,
	} {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if DialogueContext("bogus").Valid() {
		t.Error("unknown context should be invalid")
	}
	if ContextNone.String() != "none" {
		t.Errorf("unexpected name %q", ContextNone.String())
	}
}

package middleware

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestLimiterSetBurstAndRefill(t *testing.T) {
	s := newLimiterSet(time.Second, 2)
	now := time.Unix(1_700_000_000, 0)

	if !s.allow(1, now) || !s.allow(1, now) {
		t.Fatal("burst of 2 must pass")
	}
	if s.allow(1, now) {
		t.Fatal("third update inside the window must be limited")
	}
	if !s.allow(2, now) {
		t.Fatal("other users have their own bucket")
	}
	if !s.allow(1, now.Add(time.Second)) {
		t.Fatal("token must refill after the interval")
	}
}

func TestLimiterSetForgetsIdleUsers(t *testing.T) {
	s := newLimiterSet(time.Second, 1)
	now := time.Unix(1_700_000_000, 0)
	s.allow(1, now)
	s.allow(2, now.Add(limiterIdleTTL+time.Minute))
	if _, ok := s.users[1]; ok {
		t.Fatal("idle user must be swept")
	}
	if len(s.users) != 1 {
		t.Fatalf("users = %d", len(s.users))
	}
}

func TestUpdateKind(t *testing.T) {
	cases := map[string]tele.Update{
		"callback":     {Callback: &tele.Callback{}},
		"inline_query": {Query: &tele.Query{}},
		"document":     {Message: &tele.Message{Document: &tele.Document{}}},
		"message":      {Message: &tele.Message{Text: "hi"}},
		"other":        {},
	}
	for want, upd := range cases {
		if got := UpdateKind(upd); got != want {
			t.Errorf("UpdateKind = %q, want %q", got, want)
		}
	}
}

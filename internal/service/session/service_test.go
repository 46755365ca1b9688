package session

import (
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New()

	key := svc.Issue()
	if key == "" {
		t.Fatal("empty session key")
	}
	if !svc.Validate(key) {
		t.Fatal("freshly issued key should validate")
	}
	if svc.Validate("not-a-key") {
		t.Fatal("unknown key should not validate")
	}
}

func TestExpiredKeyIsEvicted(t *testing.T) {
	svc := New()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	key := svc.Issue()
	current = current.Add(31 * 24 * time.Hour)

	if svc.Validate(key) {
		t.Fatal("expired key should not validate")
	}
	if _, ok := svc.keys[key]; ok {
		t.Fatal("expired key should be evicted")
	}
}

func TestTTLSeconds(t *testing.T) {
	svc := New()
	if got := svc.TTLSeconds(); got != 30*24*60*60 {
		t.Fatalf("ttl seconds %d", got)
	}
}

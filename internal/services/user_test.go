package services

import (
	"errors"
	"testing"
)

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a != HashToken("token-a") {
		t.Fatalf("hash should be deterministic")
	}
	if a == HashToken("token-b") {
		t.Fatalf("different tokens should not collide")
	}
}

func TestUsernamePattern(t *testing.T) {
	for _, ok := range []string{"alice", "bob_99", "a-b"} {
		if !usernamePattern.MatchString(ok) {
			t.Errorf("%q should be accepted", ok)
		}
	}
	for _, bad := range []string{"", "x", "has space", "中文名", "@alice"} {
		if usernamePattern.MatchString(bad) {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestInputErrorUnwrap(t *testing.T) {
	err := invalid("评论内容不能为空")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("input error should match ErrInvalidInput")
	}
	if err.Error() != "评论内容不能为空" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

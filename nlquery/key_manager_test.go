package nlquery

import (
	"testing"
	"time"
)

func TestKeyManagerRotation(t *testing.T) {
	km := NewStaticKeyManager("a", "b")
	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, km.GetNextKey())
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Errorf("GetNextKey() sequence = %v, want [a b a]", got)
	}
}

func TestKeyManagerSkipsFailedKey(t *testing.T) {
	now := time.Now()
	km := NewStaticKeyManager("a", "b")
	km.now = func() time.Time { return now }

	km.MarkKeyFailed("a")
	for i := 0; i < 4; i++ {
		if key := km.GetNextKey(); key != "b" {
			t.Fatalf("GetNextKey() = %q while a is cooling down, want b", key)
		}
	}

	now = now.Add(keyCooldown + time.Second)
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		seen[km.GetNextKey()] = true
	}
	if !seen["a"] {
		t.Error("key a did not return to rotation after the cooldown")
	}
}

func TestKeyManagerAllKeysFailed(t *testing.T) {
	km := NewStaticKeyManager("a")
	km.MarkKeyFailed("a")
	if key := km.GetNextKey(); key != "a" {
		t.Errorf("GetNextKey() = %q, want a when every key is cooling down", key)
	}
}

func TestNewKeyManagerFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k0")
	t.Setenv("GEMINI_API_KEY_1", "k1")
	t.Setenv("GEMINI_API_KEY_2", "k0")
	t.Setenv("GEMINI_API_KEY_3", "")
	t.Setenv("GEMINI_API_KEY_4", "")

	if n := NewKeyManager().Len(); n != 2 {
		t.Errorf("Len() = %d, want 2 distinct keys", n)
	}
	if key := NewStaticKeyManager().GetNextKey(); key != "" {
		t.Errorf("GetNextKey() with no keys = %q, want empty", key)
	}
}

package main

import "testing"

func TestTypeKey_RejectsNonLetters(t *testing.T) {
	for _, key := range []string{"", "AB", "1", "?", "Cool/Good"} {
		if err := typeKey(key); err == nil {
			t.Errorf("typeKey(%q) should fail", key)
		}
	}
}

package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("expected mismatch for wrong password")
	}
	if CheckPassword("not-a-hash", "correct horse") {
		t.Error("expected mismatch for malformed hash")
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 chars, got %d", len(a))
	}
	b, _ := GeneratePassword(16)
	if a == b {
		t.Error("expected different passwords")
	}
}

package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("invalid hash accepted")
	}
}

func TestGenerateSessionToken(t *testing.T) {
	a := GenerateSessionToken()
	b := GenerateSessionToken()
	if a == "" || b == "" {
		t.Fatal("empty token")
	}
	if a == b {
		t.Error("tokens not unique")
	}
}

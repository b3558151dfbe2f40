package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Str0ngPass1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "Str0ngPass1" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !VerifyPassword("Str0ngPass1", hash) {
		t.Fatalf("expected password to verify against its own hash")
	}
	if VerifyPassword("wrongpass", hash) {
		t.Fatalf("expected different password to fail verification")
	}
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("samepass")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("samepass")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed stored hash must verify false")
	}
	if VerifyPassword("anything", "") {
		t.Fatalf("empty stored hash must verify false")
	}
}

package security

import "testing"

func TestGenerateToken_UniqueAndWellFormed(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	b, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("two generated tokens should not be equal")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	if h1 != h2 {
		t.Errorf("HashToken not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
	if h1 == HashToken("other-token") {
		t.Error("different tokens should not hash equal")
	}
}

func TestTokenHashEqual(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	stored := HashToken(token)

	if !TokenHashEqual(token, stored) {
		t.Error("TokenHashEqual should match the original token")
	}
	if TokenHashEqual("wrong-token", stored) {
		t.Error("TokenHashEqual should reject a different token")
	}
	if TokenHashEqual(token, "") {
		t.Error("TokenHashEqual should reject an empty stored hash")
	}
}

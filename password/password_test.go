package password

import "testing"

func TestHashVerify(t *testing.T) {
	hash, err := Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if !Verify("correct-horse-battery", hash) {
		t.Fatal("expected matching password to verify")
	}
	if Verify("wrong-password", hash) {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestVerifyRejectsGarbageHash(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-hash") {
		t.Fatal("expected malformed hash to fail verification")
	}
}

func TestRandomHashNeverVerifies(t *testing.T) {
	hash, err := RandomHash()
	if err != nil {
		t.Fatalf("random hash failed: %v", err)
	}

	for _, guess := range []string{"", "password", "u@x.com@oauth"} {
		if Verify(guess, hash) {
			t.Fatalf("guess %q unexpectedly verified against a random hash", guess)
		}
	}
}

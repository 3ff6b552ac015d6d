package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hashed, err := Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hashed == "correct-horse-battery" {
		t.Error("Hash() returned the plaintext")
	}

	if err := Compare(hashed, "correct-horse-battery"); err != nil {
		t.Errorf("Compare() with correct password failed: %v", err)
	}
	if err := Compare(hashed, "wrong-password!"); err == nil {
		t.Error("Compare() accepted a wrong password")
	}
}

func TestHashRejectsShortPasswords(t *testing.T) {
	if _, err := Hash("short"); err == nil {
		t.Error("Hash() accepted a password under 8 characters")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

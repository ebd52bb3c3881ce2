package vault

import (
	"encoding/base64"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"speakers":[],"hosts":[],"visits":[]}`)

	encoded, err := Encrypt(plaintext, "correct-horse")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if encoded == string(plaintext) {
		t.Fatal("Encrypt returned the plaintext unchanged")
	}

	decrypted, err := Decrypt(encoded, "correct-horse")
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("Expected round-trip to restore plaintext, got %q", decrypted)
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	encoded, err := Encrypt([]byte("secret data"), "password-one")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := Decrypt(encoded, "password-two"); err != ErrInvalidPassword {
		t.Errorf("Expected ErrInvalidPassword for wrong password, got %v", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	encoded, err := Encrypt([]byte("secret data"), "password-one")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(encoded)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := Decrypt(tampered, "password-one"); err != ErrInvalidPassword {
		t.Errorf("Expected ErrInvalidPassword for tampered data, got %v", err)
	}
}

func TestDecryptCorruptedEncoding(t *testing.T) {
	for _, encoded := range []string{"", "not base64!!!", "AAAA"} {
		if _, err := Decrypt(encoded, "password-one"); err != ErrInvalidPassword {
			t.Errorf("Expected ErrInvalidPassword for %q, got %v", encoded, err)
		}
	}
}

func TestEncryptRejectsShortPassword(t *testing.T) {
	if _, err := Encrypt([]byte("data"), "abc"); err != ErrPasswordTooShort {
		t.Errorf("Expected ErrPasswordTooShort, got %v", err)
	}
}

func TestEncryptProducesFreshSaltAndNonce(t *testing.T) {
	a, err := Encrypt([]byte("data"), "password-one")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b, err := Encrypt([]byte("data"), "password-one")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if a == b {
		t.Error("Expected two encryptions of the same data to differ")
	}
}

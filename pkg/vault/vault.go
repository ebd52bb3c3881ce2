// Package vault provides password-based encryption of the serialized document.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 6

	saltSize   = 16
	keySize    = 32
	iterations = 150000
)

// ErrInvalidPassword is returned for every decryption failure: wrong
// password, tampered ciphertext or corrupted encoding. Callers cannot
// distinguish the cases.
var ErrInvalidPassword = errors.New("invalid password or corrupted data")

// ErrPasswordTooShort is returned when a password below MinPasswordLen is
// offered for encryption.
var ErrPasswordTooShort = errors.New("password too short")

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
}

// Encrypt encrypts data with a key derived from password and returns
// base64(salt || nonce || ciphertext) as a single opaque string.
func Encrypt(data []byte, password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, data, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. It fails closed: any tampering, wrong password
// or corrupted encoding yields ErrInvalidPassword, never partial output.
func Decrypt(encoded, password string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	if len(raw) < saltSize {
		return nil, ErrInvalidPassword
	}
	salt, rest := raw[:saltSize], raw[saltSize:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, ErrInvalidPassword
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	if len(rest) < gcm.NonceSize() {
		return nil, ErrInvalidPassword
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return plaintext, nil
}

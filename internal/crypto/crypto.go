package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeyLength    = 32            // AES-256 / HMAC-SHA256 key size
	SaltSize     = 16            // KDF salt size in bytes
	NonceSize    = aes.BlockSize // CTR nonce size
	MACSize      = sha256.Size   // HMAC-SHA256 tag size
	KeyCount     = 2             // encryption key + MAC key
	PBKDF2Rounds = 210000        // Fixed PBKDF2 iterations (OWASP minimum)
)

var ErrAuthFailed = errors.New("authentication failed")

// Provider supplies the cryptographic primitives the vault logic
// orchestrates. Keeping them behind this seam means the key-source and
// vault code never touch a random source or KDF directly.
type Provider interface {
	// FillRandom fills b with cryptographically secure random bytes.
	FillRandom(b []byte) error
	// DeriveKey stretches password into length bytes of key material
	// using the given salt and iteration count.
	DeriveKey(password, salt []byte, rounds, length int) []byte
}

type stdProvider struct{}

func (stdProvider) FillRandom(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("failed to read random source: %w", err)
	}
	return nil
}

func (stdProvider) DeriveKey(password, salt []byte, rounds, length int) []byte {
	return pbkdf2.Key(password, salt, rounds, length, sha256.New)
}

// Default is the production provider: crypto/rand plus PBKDF2-HMAC-SHA256.
var Default Provider = stdProvider{}

// Seal encrypts plaintext with AES-256-CTR under encKey using a fresh
// random nonce, then authenticates nonce and ciphertext together with
// HMAC-SHA256 under macKey (encrypt-then-MAC). Covering the nonce with
// the tag defeats nonce substitution.
func Seal(p Provider, encKey, macKey, plaintext []byte) (nonce, ciphertext, tag []byte, err error) {
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce = make([]byte, NonceSize)
	if err := p.FillRandom(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = make([]byte, len(plaintext))
	cipher.NewCTR(block, nonce).XORKeyStream(ciphertext, plaintext)

	tag = authenticate(macKey, nonce, ciphertext)
	return nonce, ciphertext, tag, nil
}

// Open verifies the tag over (nonce, ciphertext) in constant time and only
// then decrypts. Any mismatch, including malformed nonce or tag lengths,
// is reported as ErrAuthFailed so a caller cannot tell a wrong key apart
// from tampered or corrupted data.
func Open(encKey, macKey, nonce, ciphertext, tag []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(tag) != MACSize {
		return nil, ErrAuthFailed
	}

	expected := authenticate(macKey, nonce, ciphertext)
	if !hmac.Equal(expected, tag) {
		return nil, ErrAuthFailed
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, nonce).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

func authenticate(macKey, nonce, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(nonce)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

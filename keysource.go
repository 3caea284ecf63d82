package securestore

import (
	"fmt"
	"io"
	"os"

	"github.com/dlrobertson/securestore/internal/crypto"
)

// KeyLength is the size in bytes of each of the two session keys.
const KeyLength = crypto.KeyLength

const keyFileMode = 0600

// KeyMaterial holds the pair of symmetric keys for a vault session: one
// for encryption, one for authentication. It is immutable once resolved;
// call Destroy when the session ends.
type KeyMaterial struct {
	encryption []byte
	mac        []byte
}

// newKeyMaterial splits a 2*KeyLength block into encryption key followed
// by MAC key, copying out of the caller's buffer.
func newKeyMaterial(block []byte) *KeyMaterial {
	keys := &KeyMaterial{
		encryption: make([]byte, KeyLength),
		mac:        make([]byte, KeyLength),
	}
	copy(keys.encryption, block[:KeyLength])
	copy(keys.mac, block[KeyLength:crypto.KeyCount*KeyLength])
	return keys
}

// Export writes the keys to path as a flat binary file: encryption key
// bytes followed by MAC key bytes, no header. The layout is exactly what
// FromFile consumes.
func (k *KeyMaterial) Export(path string) error {
	block := make([]byte, 0, crypto.KeyCount*KeyLength)
	block = append(block, k.encryption...)
	block = append(block, k.mac...)
	defer crypto.ClearBytes(block)

	if err := os.WriteFile(path, block, keyFileMode); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Destroy zeroes the key material. The KeyMaterial must not be used
// afterwards.
func (k *KeyMaterial) Destroy() {
	crypto.ClearBytes(k.encryption)
	crypto.ClearBytes(k.mac)
}

// KeySource selects how a vault session obtains its KeyMaterial. The
// variant set is closed: FromFile, FromPassword and Generate.
type KeySource interface {
	resolve(p crypto.Provider, salt []byte) (*KeyMaterial, error)
}

// FromFile loads the keys from a binary key file on disk, as written by
// KeyMaterial.Export.
func FromFile(path string) KeySource {
	return fileSource(path)
}

// FromPassword derives the keys from a password and the vault's persisted
// salt. Resolution fails with ErrMissingSalt if the vault has none.
func FromPassword(password string) KeySource {
	return passwordSource(password)
}

// Generate produces fresh keys from the secure random source.
var Generate KeySource = generateSource{}

type fileSource string

func (s fileSource) resolve(_ crypto.Provider, _ []byte) (*KeyMaterial, error) {
	f, err := os.Open(string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	defer f.Close()

	block := make([]byte, crypto.KeyCount*KeyLength)
	defer crypto.ClearBytes(block)

	if _, err := io.ReadFull(f, block); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: %s", ErrShortKeyFile, s)
		}
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	return newKeyMaterial(block), nil
}

type passwordSource string

func (s passwordSource) resolve(p crypto.Provider, salt []byte) (*KeyMaterial, error) {
	if len(salt) == 0 {
		return nil, ErrMissingSalt
	}

	// One PBKDF2 call with a domain split keeps derivation deterministic
	// for a given password and salt.
	block := p.DeriveKey([]byte(s), salt, crypto.PBKDF2Rounds, crypto.KeyCount*KeyLength)
	defer crypto.ClearBytes(block)

	return newKeyMaterial(block), nil
}

type generateSource struct{}

func (generateSource) resolve(p crypto.Provider, _ []byte) (*KeyMaterial, error) {
	block := make([]byte, crypto.KeyCount*KeyLength)
	defer crypto.ClearBytes(block)

	if err := p.FillRandom(block); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}

	return newKeyMaterial(block), nil
}

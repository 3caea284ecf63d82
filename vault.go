package securestore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dlrobertson/securestore/internal/crypto"
)

// vaultVersion identifies format version 1: JSON document, 16-byte salt,
// AES-256-CTR + HMAC-SHA256 entries, PBKDF2-HMAC-SHA256 at 210k rounds.
const vaultVersion = 1

// vaultEntry is one encrypted secret record. json encodes the byte fields
// as base64, keeping the vault file a self-describing text document.
type vaultEntry struct {
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
	MAC   []byte `json:"mac"`
}

// vault is the on-disk container: the KDF salt plus the named entries.
type vault struct {
	Version int                   `json:"version"`
	Salt    []byte                `json:"salt,omitempty"`
	Secrets map[string]vaultEntry `json:"secrets"`
}

// newVault creates an empty vault with a freshly generated salt. The salt
// is generated eagerly, before any key source is resolved, so that
// password derivation against a brand-new vault always has one.
func newVault(p crypto.Provider) (*vault, error) {
	salt := make([]byte, crypto.SaltSize)
	if err := p.FillRandom(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}

	return &vault{
		Version: vaultVersion,
		Salt:    salt,
		Secrets: make(map[string]vaultEntry),
	}, nil
}

func decodeVault(data []byte) (*vault, error) {
	var v vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("not a valid vault file: %w", err)
	}
	if v.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported vault version %d", v.Version)
	}
	if len(v.Salt) != 0 && len(v.Salt) != crypto.SaltSize {
		return nil, fmt.Errorf("not a valid vault file: bad salt length %d", len(v.Salt))
	}
	if v.Secrets == nil {
		v.Secrets = make(map[string]vaultEntry)
	}
	return &v, nil
}

func (v *vault) encode() ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode vault: %w", err)
	}
	return data, nil
}

// seal encrypts plaintext under keys and replaces any existing entry for
// name. Entries are only ever replaced whole; each seal draws a fresh
// nonce.
func (v *vault) seal(p crypto.Provider, keys *KeyMaterial, name string, plaintext []byte) error {
	nonce, ciphertext, tag, err := crypto.Seal(p, keys.encryption, keys.mac, plaintext)
	if err != nil {
		return err
	}

	v.Secrets[name] = vaultEntry{
		Nonce: nonce,
		Data:  ciphertext,
		MAC:   tag,
	}
	return nil
}

// open authenticates and decrypts the entry for name. Authentication
// failures of any kind surface as ErrCannotDecrypt.
func (v *vault) open(keys *KeyMaterial, name string) ([]byte, error) {
	entry, ok := v.Secrets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	plaintext, err := crypto.Open(keys.encryption, keys.mac, entry.Nonce, entry.Data, entry.MAC)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthFailed) {
			return nil, ErrCannotDecrypt
		}
		return nil, err
	}
	return plaintext, nil
}

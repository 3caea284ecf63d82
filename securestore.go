// Package securestore stores named secret values on disk in an encrypted,
// integrity-protected vault.
//
// A vault is unlocked by one of three key sources: raw key material read
// from a key file (FromFile), keys derived from a password and the vault's
// persisted salt (FromPassword), or keys drawn fresh from the secure
// random source (Generate). Whichever source is used, the session holds a
// pair of 32-byte keys: one for encryption, one for authentication.
//
// Entries are individually encrypted with AES-256-CTR and authenticated
// with HMAC-SHA256 over nonce and ciphertext (encrypt-then-MAC). The MAC
// is verified before any decryption is attempted, and every verification
// failure is reported as the single generic ErrCannotDecrypt.
//
// A SecretsManager owns its vault and key material exclusively; the
// package provides no cross-process locking. Changes are only persisted
// by an explicit Save, which replaces the vault file atomically.
package securestore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dlrobertson/securestore/internal/crypto"
	"github.com/dlrobertson/securestore/persist"
)

// SecretsManager is the primary interface for interacting with a vault.
type SecretsManager struct {
	store    persist.Store
	provider crypto.Provider
	vault    *vault
	keys     *KeyMaterial
}

// Option configures a SecretsManager during New or Load.
type Option func(*SecretsManager)

// WithStore replaces the default file-backed store, e.g. with a
// persist.BoltStore. The path argument of New and Load is ignored for
// persistence when a custom store is set.
func WithStore(store persist.Store) Option {
	return func(m *SecretsManager) {
		m.store = store
	}
}

func newManager(path string, opts []Option) *SecretsManager {
	m := &SecretsManager{provider: crypto.Default}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = persist.NewFileStore(path)
	}
	return m
}

// New creates a new vault at path and returns a manager for it. It fails
// with ErrVaultExists if a vault is already present; New never overwrites.
// The vault gets a fresh salt before the key source is resolved, so all
// three sources work against a new vault. Nothing is written to disk
// until Save is called.
func New(path string, source KeySource, opts ...Option) (*SecretsManager, error) {
	m := newManager(path, opts)

	exists, err := m.store.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrVaultExists, path)
	}

	v, err := newVault(m.provider)
	if err != nil {
		return nil, err
	}

	keys, err := source.resolve(m.provider, v.Salt)
	if err != nil {
		return nil, err
	}

	m.vault = v
	m.keys = keys
	return m, nil
}

// Load opens an existing vault at path, resolving the key source against
// the persisted salt. It fails with ErrNoVault when nothing exists at the
// path and with a decode error when the file is not a valid vault.
func Load(path string, source KeySource, opts ...Option) (*SecretsManager, error) {
	m := newManager(path, opts)

	exists, err := m.store.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNoVault, path)
	}

	data, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	v, err := decodeVault(data)
	if err != nil {
		return nil, err
	}

	keys, err := source.resolve(m.provider, v.Salt)
	if err != nil {
		return nil, err
	}

	m.vault = v
	m.keys = keys
	return m, nil
}

// Save persists the vault. The underlying store replaces the previous
// contents atomically.
func (m *SecretsManager) Save() error {
	data, err := m.vault.encode()
	if err != nil {
		return err
	}
	return m.store.Save(data)
}

// Set serializes value as JSON, encrypts it under the session keys and
// stores it as name, replacing any existing entry.
func (m *SecretsManager) Set(name string, value any) error {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize secret %q: %w", name, err)
	}
	defer crypto.ClearBytes(plaintext)

	return m.vault.seal(m.provider, m.keys, name, plaintext)
}

// RetrieveBytes authenticates, decrypts and returns the raw serialized
// bytes stored under name.
func (m *SecretsManager) RetrieveBytes(name string) ([]byte, error) {
	return m.vault.open(m.keys, name)
}

// Retrieve decrypts the secret stored under name and deserializes it into
// T. It fails with ErrNotFound for an absent name and a deserialization
// error when the stored value does not match T.
func Retrieve[T any](m *SecretsManager, name string) (T, error) {
	var value T

	plaintext, err := m.RetrieveBytes(name)
	if err != nil {
		return value, err
	}
	defer crypto.ClearBytes(plaintext)

	if err := json.Unmarshal(plaintext, &value); err != nil {
		return value, fmt.Errorf("failed to deserialize secret %q: %w", name, err)
	}
	return value, nil
}

// Delete removes the entry stored under name. It fails with ErrNotFound
// if no such entry exists.
func (m *SecretsManager) Delete(name string) error {
	if _, ok := m.vault.Secrets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(m.vault.Secrets, name)
	return nil
}

// Has reports whether an entry exists under name.
func (m *SecretsManager) Has(name string) bool {
	_, ok := m.vault.Secrets[name]
	return ok
}

// Keys returns the names of all stored secrets in sorted order.
func (m *SecretsManager) Keys() []string {
	names := make([]string, 0, len(m.vault.Secrets))
	for name := range m.vault.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportKeys writes the session's key material to path in the flat binary
// layout consumed by FromFile, so password-derived or generated keys can
// be round-tripped into a portable key file.
func (m *SecretsManager) ExportKeys(path string) error {
	return m.keys.Export(path)
}

// Destroy zeroes the session's key material. The manager must not be used
// afterwards.
func (m *SecretsManager) Destroy() {
	m.keys.Destroy()
}

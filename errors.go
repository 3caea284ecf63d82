package securestore

import "errors"

var (
	// ErrVaultExists is returned by New when the target path already
	// holds a vault. New never silently overwrites an existing vault.
	ErrVaultExists = errors.New("vault already exists")

	// ErrNoVault is returned by Load when no vault exists at the path.
	ErrNoVault = errors.New("vault does not exist")

	// ErrNotFound is returned by Retrieve and Delete for an absent name.
	ErrNotFound = errors.New("secret not found")

	// ErrMissingSalt is returned when password-based key derivation is
	// attempted against a vault that has no persisted salt.
	ErrMissingSalt = errors.New("vault has no salt for password derivation")

	// ErrCannotDecrypt covers every authentication failure: wrong key,
	// tampered ciphertext and corrupted records are deliberately
	// indistinguishable.
	ErrCannotDecrypt = errors.New("cannot decrypt vault entry")

	// ErrShortKeyFile is returned when a key file holds fewer than the
	// required 2*KeyLength bytes. Short reads are never zero-padded.
	ErrShortKeyFile = errors.New("key file too short")

	// ErrRandomSource is returned when the secure random source fails.
	// Callers may treat it as fatal: it indicates a broken environment.
	ErrRandomSource = errors.New("random source unavailable")
)

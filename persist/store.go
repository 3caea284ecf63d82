// Package persist abstracts where the serialized vault document lives.
//
// Two backends are provided:
//   - FileStore: a single flat file, replaced atomically on save
//   - BoltStore: a bbolt database holding the document in one bucket
//
// Everything passed through a Store is already encrypted and authenticated
// by the vault layer; a backend never sees plaintext secrets.
package persist

// Store reads and writes one opaque vault document.
type Store interface {
	// Exists reports whether a vault document has been saved before.
	Exists() (bool, error)
	// Load returns the current vault document.
	Load() ([]byte, error)
	// Save durably replaces the vault document. A crash mid-save must
	// leave either the old or the new document, never a torn mix.
	Save(data []byte) error
}

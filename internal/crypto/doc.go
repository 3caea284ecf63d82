// Package crypto provides the cryptographic primitives for securestore.
//
// Per-entry encryption uses AES-256-CTR with HMAC-SHA256 in an
// encrypt-then-MAC construction:
//   - 32-byte encryption key and 32-byte independent MAC key
//   - 16-byte random nonce per encryption operation
//   - HMAC computed over nonce || ciphertext, verified in constant time
//     before any decryption is attempted
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 16-byte random salt (stored unencrypted in the vault)
//   - 210,000 iterations (OWASP minimum recommendation)
//   - one 64-byte derivation split into encryption and MAC keys
//
// The iteration count, hash, nonce size and tag size are fixed constants
// of vault format version 1.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package crypto

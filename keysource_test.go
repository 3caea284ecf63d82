package securestore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dlrobertson/securestore/internal/crypto"
)

func testSalt(t *testing.T) []byte {
	t.Helper()
	salt := make([]byte, crypto.SaltSize)
	if err := crypto.Default.FillRandom(salt); err != nil {
		t.Fatalf("Failed to generate salt: %v", err)
	}
	return salt
}

func TestGenerateProducesDistinctKeys(t *testing.T) {
	keys1, err := Generate.resolve(crypto.Default, nil)
	if err != nil {
		t.Fatalf("Generate resolve failed: %v", err)
	}
	keys2, err := Generate.resolve(crypto.Default, nil)
	if err != nil {
		t.Fatalf("Generate resolve failed: %v", err)
	}

	if bytes.Equal(keys1.encryption, keys2.encryption) {
		t.Error("Two generated sessions should not share an encryption key")
	}
	if bytes.Equal(keys1.encryption, keys1.mac) {
		t.Error("Encryption and MAC keys should be independent")
	}
}

func TestFromFileLayout(t *testing.T) {
	block := make([]byte, crypto.KeyCount*KeyLength)
	for i := range block {
		block[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "keyfile")
	if err := os.WriteFile(path, block, 0600); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}

	keys, err := FromFile(path).resolve(crypto.Default, nil)
	if err != nil {
		t.Fatalf("FromFile resolve failed: %v", err)
	}

	if !bytes.Equal(keys.encryption, block[:KeyLength]) {
		t.Error("Encryption key should be the first half of the key file")
	}
	if !bytes.Equal(keys.mac, block[KeyLength:]) {
		t.Error("MAC key should be the second half of the key file")
	}
}

func TestFromFileShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short")
	if err := os.WriteFile(path, make([]byte, KeyLength), 0600); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}

	if _, err := FromFile(path).resolve(crypto.Default, nil); !errors.Is(err, ErrShortKeyFile) {
		t.Errorf("Expected ErrShortKeyFile, got %v", err)
	}
}

func TestFromFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope")
	if _, err := FromFile(path).resolve(crypto.Default, nil); err == nil {
		t.Error("Resolving a missing key file should fail")
	}
}

func TestFromPasswordRequiresSalt(t *testing.T) {
	if _, err := FromPassword("pw").resolve(crypto.Default, nil); !errors.Is(err, ErrMissingSalt) {
		t.Errorf("Expected ErrMissingSalt, got %v", err)
	}
}

func TestFromPasswordDeterministic(t *testing.T) {
	salt := testSalt(t)

	keys1, err := FromPassword("samepw").resolve(crypto.Default, salt)
	if err != nil {
		t.Fatalf("FromPassword resolve failed: %v", err)
	}
	keys2, err := FromPassword("samepw").resolve(crypto.Default, salt)
	if err != nil {
		t.Fatalf("FromPassword resolve failed: %v", err)
	}

	if !bytes.Equal(keys1.encryption, keys2.encryption) || !bytes.Equal(keys1.mac, keys2.mac) {
		t.Error("Same password and salt should yield identical key material")
	}

	keys3, err := FromPassword("otherpw").resolve(crypto.Default, salt)
	if err != nil {
		t.Fatalf("FromPassword resolve failed: %v", err)
	}
	if bytes.Equal(keys1.encryption, keys3.encryption) {
		t.Error("Different passwords should yield different key material")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	keys, err := Generate.resolve(crypto.Default, nil)
	if err != nil {
		t.Fatalf("Generate resolve failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "exported.key")
	if err := keys.Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(crypto.KeyCount*KeyLength) {
		t.Errorf("Key file should be exactly %d bytes, got %d", crypto.KeyCount*KeyLength, info.Size())
	}

	imported, err := FromFile(path).resolve(crypto.Default, nil)
	if err != nil {
		t.Fatalf("FromFile resolve failed: %v", err)
	}
	if !bytes.Equal(keys.encryption, imported.encryption) || !bytes.Equal(keys.mac, imported.mac) {
		t.Error("Imported keys should equal the exported keys")
	}
}

func TestKeyMaterialDestroy(t *testing.T) {
	keys, err := Generate.resolve(crypto.Default, nil)
	if err != nil {
		t.Fatalf("Generate resolve failed: %v", err)
	}

	keys.Destroy()
	for _, b := range keys.encryption {
		if b != 0 {
			t.Fatal("Encryption key not zeroed after Destroy")
		}
	}
	for _, b := range keys.mac {
		if b != 0 {
			t.Fatal("MAC key not zeroed after Destroy")
		}
	}
}

// Package keyring stores vault passwords in the OS keyring, keyed by the
// vault file path, so repeated CLI invocations do not have to re-prompt.
package keyring

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "securestore"

// SavePassword stores the password for the vault at path in the OS keyring
func SavePassword(vaultPath string, password string) error {
	return keyring.Set(serviceName, vaultPath, password)
}

// GetPassword retrieves the password for the vault at path from the OS keyring
func GetPassword(vaultPath string) (string, error) {
	return keyring.Get(serviceName, vaultPath)
}

// DeletePassword removes the password for the vault at path from the OS keyring
func DeletePassword(vaultPath string) error {
	return keyring.Delete(serviceName, vaultPath)
}

// HasPassword checks if a password is stored for the vault at path
func HasPassword(vaultPath string) bool {
	_, err := keyring.Get(serviceName, vaultPath)
	return err == nil
}

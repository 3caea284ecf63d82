package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"
)

const passwordEnvVar = "SECURESTORE_PASSWORD"

// passwordFromEnv reads the password from SECURESTORE_PASSWORD, for
// scripted use. Empty means unset.
func passwordFromEnv() string {
	return os.Getenv(passwordEnvVar)
}

// readPassword reads a password from the terminal without echoing
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// readPasswordConfirm reads a password twice and ensures they match
func readPasswordConfirm() (string, error) {
	password1, err := readPassword("Enter password: ")
	if err != nil {
		return "", err
	}

	password2, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}

	if password1 != password2 {
		return "", fmt.Errorf("passwords do not match")
	}
	return password1, nil
}

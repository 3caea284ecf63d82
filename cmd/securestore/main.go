package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dlrobertson/securestore"
	"github.com/dlrobertson/securestore/internal/keyring"
)

const defaultVaultFile = "secrets.json"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		runCreate(os.Args[2:])
	case "set":
		runSet(os.Args[2:])
	case "get":
		runGet(os.Args[2:])
	case "rm":
		runRm(os.Args[2:])
	case "ls":
		runLs(os.Args[2:])
	case "export-key":
		runExportKey(os.Args[2:])
	case "forget":
		runForget(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// keyFlags is the key-acquisition flag set shared by commands that need
// to unlock an existing vault.
type keyFlags struct {
	vaultPath  string
	keyFile    string
	useKeyring bool
}

func (kf *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&kf.vaultPath, "f", defaultVaultFile, "Path to the vault file")
	fs.StringVar(&kf.keyFile, "k", "", "Path to a binary key file")
	fs.BoolVar(&kf.useKeyring, "keyring", false, "Look up the vault password in the OS keyring")
}

// keySource picks the key source for an existing vault: an explicit key
// file wins, then the environment, then the OS keyring, then a prompt.
func (kf *keyFlags) keySource() (securestore.KeySource, error) {
	if kf.keyFile != "" {
		return securestore.FromFile(kf.keyFile), nil
	}

	if password := passwordFromEnv(); password != "" {
		return securestore.FromPassword(password), nil
	}

	if kf.useKeyring {
		if password, err := keyring.GetPassword(kf.vaultPath); err == nil {
			return securestore.FromPassword(password), nil
		}
		fmt.Fprintln(os.Stderr, "No keyring entry for this vault, falling back to prompt")
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		return nil, err
	}
	return securestore.FromPassword(password), nil
}

func runCreate(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var kf keyFlags
	kf.register(fs)
	usePassword := fs.Bool("password", false, "Protect the vault with a password instead of a key file")
	exportKey := fs.String("export-key", "", "Write the generated keys to this key file")
	parseFlags(fs, args)

	var source securestore.KeySource
	var password string

	switch {
	case kf.keyFile != "":
		source = securestore.FromFile(kf.keyFile)
	case *usePassword:
		pw := passwordFromEnv()
		if pw == "" {
			var err error
			pw, err = readPasswordConfirm()
			if err != nil {
				fail(err)
			}
		}
		password = pw
		source = securestore.FromPassword(pw)
	case *exportKey != "":
		source = securestore.Generate
	default:
		fmt.Fprintln(os.Stderr, "Error: generated keys would be unrecoverable")
		fmt.Fprintln(os.Stderr, "Pass --export-key <file> to save them, or --password to derive keys from a password")
		os.Exit(1)
	}

	manager, err := securestore.New(kf.vaultPath, source)
	if err != nil {
		fail(err)
	}
	defer manager.Destroy()

	if *exportKey != "" {
		if err := manager.ExportKeys(*exportKey); err != nil {
			fail(err)
		}
		fmt.Printf("Keys written to %s\n", *exportKey)
	}

	if err := manager.Save(); err != nil {
		fail(err)
	}

	if kf.useKeyring && password != "" {
		if err := keyring.SavePassword(kf.vaultPath, password); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not store password in keyring: %s\n", err)
		}
	}

	fmt.Printf("Created vault %s\n", kf.vaultPath)
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	var kf keyFlags
	kf.register(fs)
	parseFlags(fs, args)

	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Usage: securestore set [flags] <name> [value]")
		os.Exit(1)
	}
	name := fs.Arg(0)

	var value string
	if fs.NArg() == 2 {
		value = fs.Arg(1)
	} else {
		// No value argument: read it from stdin so the secret stays out
		// of the shell history and process list.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail(fmt.Errorf("failed to read value from stdin: %w", err))
		}
		value = trimTrailingNewline(string(data))
	}

	manager := unlock(&kf)
	defer manager.Destroy()

	if err := manager.Set(name, value); err != nil {
		fail(err)
	}
	if err := manager.Save(); err != nil {
		fail(err)
	}
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	var kf keyFlags
	kf.register(fs)
	parseFlags(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: securestore get [flags] <name>")
		os.Exit(1)
	}

	manager := unlock(&kf)
	defer manager.Destroy()

	value, err := securestore.Retrieve[string](manager, fs.Arg(0))
	if err != nil {
		fail(err)
	}
	fmt.Println(value)
}

func runRm(args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	var kf keyFlags
	kf.register(fs)
	parseFlags(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: securestore rm [flags] <name>")
		os.Exit(1)
	}

	manager := unlock(&kf)
	defer manager.Destroy()

	if err := manager.Delete(fs.Arg(0)); err != nil {
		fail(err)
	}
	if err := manager.Save(); err != nil {
		fail(err)
	}
}

func runLs(args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	var kf keyFlags
	kf.register(fs)
	parseFlags(fs, args)

	manager := unlock(&kf)
	defer manager.Destroy()

	for _, name := range manager.Keys() {
		fmt.Println(name)
	}
}

func runExportKey(args []string) {
	fs := flag.NewFlagSet("export-key", flag.ExitOnError)
	var kf keyFlags
	kf.register(fs)
	out := fs.String("o", "", "Path to write the key file to")
	parseFlags(fs, args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: securestore export-key [flags] -o <file>")
		os.Exit(1)
	}

	manager := unlock(&kf)
	defer manager.Destroy()

	if err := manager.ExportKeys(*out); err != nil {
		fail(err)
	}
	fmt.Printf("Keys written to %s\n", *out)
}

func runForget(args []string) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	vaultPath := fs.String("f", defaultVaultFile, "Path to the vault file")
	parseFlags(fs, args)

	if err := keyring.DeletePassword(*vaultPath); err != nil {
		fail(fmt.Errorf("failed to remove keyring entry: %w", err))
	}
	fmt.Printf("Removed keyring entry for %s\n", *vaultPath)
}

// unlock opens the vault named by the flags or exits with a friendly
// message.
func unlock(kf *keyFlags) *securestore.SecretsManager {
	source, err := kf.keySource()
	if err != nil {
		fail(err)
	}

	manager, err := securestore.Load(kf.vaultPath, source)
	if err != nil {
		fail(err)
	}
	return manager
}

func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// fail prints a friendly message for the known error conditions and exits
func fail(err error) {
	switch {
	case errors.Is(err, securestore.ErrNoVault):
		fmt.Fprintf(os.Stderr, "Error: vault does not exist\n")
		fmt.Fprintf(os.Stderr, "Run 'securestore create' first\n")
	case errors.Is(err, securestore.ErrVaultExists):
		fmt.Fprintf(os.Stderr, "Error: a vault already exists at that path\n")
	case errors.Is(err, securestore.ErrCannotDecrypt):
		fmt.Fprintf(os.Stderr, "Error: cannot decrypt (wrong key or tampered vault)\n")
	case errors.Is(err, securestore.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Println("securestore - Encrypted named-secrets vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  securestore <command> [flags] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create      Create a new vault")
	fmt.Println("  set         Store a secret (value from argument or stdin)")
	fmt.Println("  get         Retrieve a secret")
	fmt.Println("  rm          Remove a secret")
	fmt.Println("  ls          List secret names")
	fmt.Println("  export-key  Export the session keys to a key file")
	fmt.Println("  forget      Remove a remembered password from the OS keyring")
	fmt.Println()
	fmt.Println("Common flags:")
	fmt.Println("  -f <file>     Vault file (default secrets.json)")
	fmt.Println("  -k <file>     Unlock with a binary key file")
	fmt.Println("  -keyring      Remember/look up the password in the OS keyring")
	fmt.Println()
	fmt.Println("The password may also be supplied via SECURESTORE_PASSWORD.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  securestore create -f vault.json --password")
	fmt.Println("  securestore create -f vault.json --export-key vault.key")
	fmt.Println("  securestore set -f vault.json db/password hunter2")
	fmt.Println("  securestore get -f vault.json -k vault.key db/password")
}

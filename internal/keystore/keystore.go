// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keystore persists the user's generation API credential, encrypted
// at rest.
//
// The credential lives at ~/.seraa/credentials as AES-256-GCM ciphertext.
// The encryption key is derived with PBKDF2-SHA-256 from a per-install random
// secret stored next to it; the goal is to keep the raw key out of casual
// file greps and backups, not to defend against an attacker who owns the
// account.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/kiann/seraa-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// nonceSize is the AES-GCM nonce size (96 bits).
	nonceSize = 12
	// keySize is the AES-256 key size.
	keySize = 32
	// saltSize is the key-derivation salt size.
	saltSize = 32
	// pbkdf2Iterations follows the OWASP recommendation for PBKDF2-SHA-256.
	pbkdf2Iterations = 600000

	credentialFile = "credentials"
	secretFile     = "credentials.secret"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoCredential indicates no API credential has been stored yet.
	ErrNoCredential = errors.New("no API credential stored")
	// ErrCorruptCredential indicates the stored credential failed to decrypt.
	ErrCorruptCredential = errors.New("stored credential is corrupt or the install secret changed")
)

// zeroBytes clears sensitive byte slices.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// KEYSTORE
// =============================================================================

// Keystore is the persistent credential slot.
type Keystore struct {
	dir string
}

// New creates a keystore rooted at ~/.seraa.
func New() (*Keystore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}
	return NewWithDir(filepath.Join(home, ".seraa")), nil
}

// NewWithDir creates a keystore rooted at an explicit directory.
func NewWithDir(dir string) *Keystore {
	return &Keystore{dir: dir}
}

// Set stores the credential, replacing any previous one.
func (k *Keystore) Set(credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return errors.New("credential must not be empty")
	}

	key, err := k.deriveKey(true)
	if err != nil {
		return err
	}
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to initialize GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(credential), nil)
	if err := util.AtomicWriteFile(k.path(credentialFile), sealed, 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Get returns the stored credential. Absence is reported as ErrNoCredential.
func (k *Keystore) Get() (string, error) {
	sealed, err := os.ReadFile(k.path(credentialFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	if len(sealed) < nonceSize {
		return "", ErrCorruptCredential
	}

	key, err := k.deriveKey(false)
	if err != nil {
		return "", err
	}
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to initialize GCM: %w", err)
	}

	plaintext, err := aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", ErrCorruptCredential
	}
	return string(plaintext), nil
}

// Clear removes the stored credential. Clearing an empty slot is not an
// error.
func (k *Keystore) Clear() error {
	err := os.Remove(k.path(credentialFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// =============================================================================
// KEY DERIVATION
// =============================================================================

// deriveKey derives the AES key from the per-install secret, creating the
// secret on first use when create is true.
func (k *Keystore) deriveKey(create bool) ([]byte, error) {
	secret, err := os.ReadFile(k.path(secretFile))
	if errors.Is(err, os.ErrNotExist) {
		if !create {
			return nil, ErrNoCredential
		}
		secret = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, secret); err != nil {
			return nil, fmt.Errorf("failed to generate install secret: %w", err)
		}
		if err := util.AtomicWriteFile(k.path(secretFile), secret, 0600); err != nil {
			return nil, fmt.Errorf("failed to write install secret: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read install secret: %w", err)
	}

	// The random secret doubles as passphrase and salt.
	return pbkdf2.Key(secret, secret[:saltSize/2], pbkdf2Iterations, keySize, sha256.New), nil
}

func (k *Keystore) path(name string) string {
	return filepath.Join(k.dir, name)
}

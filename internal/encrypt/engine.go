// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package encrypt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Config keys understood by every engine.
const (
	ConfigType   = "type"
	ConfigKey    = "key"
	ConfigCipher = "cipher"
	ConfigMode   = "mode"
)

// Engine is a symmetric cipher. Ciphertexts are printable strings that
// carry whatever the engine needs to decrypt them (IV, MAC).
type Engine interface {
	// Encrypt seals message with iv, which must come from CreateIV.
	Encrypt(message string, iv []byte) (string, error)

	// Decrypt opens a ciphertext produced by Encrypt. Malformed or tampered
	// input yields ErrDecrypt.
	Decrypt(ciphertext string) (string, error)

	// CreateIV returns a fresh random IV of the engine's fixed length.
	CreateIV() ([]byte, error)
}

// ConfigError reports an unusable encryption configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// ErrDecrypt is returned for any ciphertext that cannot be opened.
var ErrDecrypt = errors.New("unable to decrypt ciphertext")

// NoKeyMessage is the message used when a group has no key.
const NoKeyMessage = "No encryption key is defined in the encryption configuration"

// base holds what every engine is built from.
type base struct {
	key    []byte
	mode   string
	cipher string
}

// newBase validates cfg. A key that is absent or nil fails; length checks
// belong to the engines.
func newBase(cfg map[string]any) (base, error) {
	raw, ok := cfg[ConfigKey]
	if !ok || raw == nil {
		return base{}, &ConfigError{Message: NoKeyMessage}
	}
	s, ok := raw.(string)
	if !ok {
		return base{}, &ConfigError{Message: NoKeyMessage}
	}
	key, err := ParseKey(s)
	if err != nil {
		return base{}, err
	}

	b := base{key: key}
	b.mode, _ = cfg[ConfigMode].(string)
	b.cipher, _ = cfg[ConfigCipher].(string)
	return b, nil
}

// ParseKey decodes "base64:"-prefixed keys and returns any other key as its
// raw bytes.
func ParseKey(s string) ([]byte, error) {
	if enc, ok := strings.CutPrefix(s, "base64:"); ok {
		key, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("Encryption key is not valid base64: %v", err)}
		}
		return key, nil
	}
	return []byte(s), nil
}

// Key returns a copy of the key.
func (b base) Key() []byte {
	return append([]byte(nil), b.key...)
}

// Cipher returns the configured cipher identifier.
func (b base) Cipher() string {
	return b.cipher
}

// Mode returns the configured mode, if any.
func (b base) Mode() string {
	return b.mode
}

func (b base) requireKeyLen(n int, engine string) error {
	if len(b.key) != n {
		return &ConfigError{Message: fmt.Sprintf("The %s engine requires a %d byte key, got %d", engine, n, len(b.key))}
	}
	return nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

func checkIV(iv []byte, n int) error {
	if len(iv) != n {
		return fmt.Errorf("iv must be %d bytes, got %d", n, len(iv))
	}
	return nil
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package encrypt

import (
	"encoding/base64"

	"golang.org/x/crypto/nacl/secretbox"
)

// TypeSodium selects the Sodium engine.
const TypeSodium = "sodium"

const (
	sodiumKeySize   = 32
	sodiumNonceSize = 24
)

// Sodium seals messages with XSalsa20-Poly1305 (NaCl secretbox). The
// ciphertext is base64(nonce || box).
type Sodium struct {
	base
	key [sodiumKeySize]byte
}

// NewSodium builds a Sodium engine. The key must be 32 bytes.
func NewSodium(cfg map[string]any) (*Sodium, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	if err := b.requireKeyLen(sodiumKeySize, TypeSodium); err != nil {
		return nil, err
	}
	s := &Sodium{base: b}
	copy(s.key[:], b.key)
	return s, nil
}

func (s *Sodium) Encrypt(message string, iv []byte) (string, error) {
	if err := checkIV(iv, sodiumNonceSize); err != nil {
		return "", err
	}
	var nonce [sodiumNonceSize]byte
	copy(nonce[:], iv)
	out := secretbox.Seal(nonce[:], []byte(message), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Sodium) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < sodiumNonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [sodiumNonceSize]byte
	copy(nonce[:], raw[:sodiumNonceSize])
	plain, ok := secretbox.Open(nil, raw[sodiumNonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func (s *Sodium) CreateIV() ([]byte, error) {
	return randomBytes(sodiumNonceSize)
}

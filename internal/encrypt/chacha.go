// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package encrypt

import (
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// TypeChaCha selects the XChaCha20-Poly1305 engine.
const TypeChaCha = "chacha"

// ChaCha seals messages with XChaCha20-Poly1305. The ciphertext is
// base64(nonce || sealed).
type ChaCha struct {
	base
	aead cipher.AEAD
}

// NewChaCha builds a ChaCha engine. The key must be 32 bytes.
func NewChaCha(cfg map[string]any) (*ChaCha, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	if err := b.requireKeyLen(chacha20poly1305.KeySize, TypeChaCha); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create chacha20poly1305 cipher: %w", err)
	}
	return &ChaCha{base: b, aead: aead}, nil
}

func (c *ChaCha) Encrypt(message string, iv []byte) (string, error) {
	if err := checkIV(iv, chacha20poly1305.NonceSizeX); err != nil {
		return "", err
	}
	out := make([]byte, 0, len(iv)+len(message)+c.aead.Overhead())
	out = append(out, iv...)
	out = c.aead.Seal(out, iv, []byte(message), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *ChaCha) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < chacha20poly1305.NonceSizeX+c.aead.Overhead() {
		return "", ErrDecrypt
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func (c *ChaCha) CreateIV() ([]byte, error) {
	return randomBytes(chacha20poly1305.NonceSizeX)
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package encrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// TypeOpenSSL selects the AES-CBC engine.
const TypeOpenSSL = "openssl"

// Supported OpenSSL cipher names and their key sizes.
var opensslCiphers = map[string]int{
	"aes-128-cbc": 16,
	"aes-256-cbc": 32,
}

// DefaultOpenSSLCipher is used when a group names no cipher.
const DefaultOpenSSLCipher = "aes-256-cbc"

// OpenSSL encrypts with AES-CBC and authenticates with HMAC-SHA256. The
// ciphertext is base64 of a JSON object {"iv","value","mac"} where iv and
// value are base64 and mac is hex HMAC(key, iv+value).
type OpenSSL struct {
	base
	block cipher.Block
}

type opensslPayload struct {
	IV    string `json:"iv"`
	Value string `json:"value"`
	MAC   string `json:"mac"`
}

// NewOpenSSL builds an OpenSSL engine. The key length must match the cipher.
func NewOpenSSL(cfg map[string]any) (*OpenSSL, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	if b.cipher == "" {
		b.cipher = DefaultOpenSSLCipher
	}
	b.cipher = strings.ToLower(b.cipher)

	size, ok := opensslCiphers[b.cipher]
	if !ok {
		return nil, &ConfigError{Message: fmt.Sprintf("Unsupported cipher %q for the %s engine", b.cipher, TypeOpenSSL)}
	}
	if err := b.requireKeyLen(size, TypeOpenSSL); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create aes cipher: %w", err)
	}
	return &OpenSSL{base: b, block: block}, nil
}

func (o *OpenSSL) Encrypt(message string, iv []byte) (string, error) {
	if err := checkIV(iv, aes.BlockSize); err != nil {
		return "", err
	}

	plain := pkcs7Pad([]byte(message), aes.BlockSize)
	sealed := make([]byte, len(plain))
	cipher.NewCBCEncrypter(o.block, iv).CryptBlocks(sealed, plain)

	p := opensslPayload{
		IV:    base64.StdEncoding.EncodeToString(iv),
		Value: base64.StdEncoding.EncodeToString(sealed),
	}
	p.MAC = o.mac(p.IV, p.Value)

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (o *OpenSSL) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || !gjson.ValidBytes(raw) {
		return "", ErrDecrypt
	}

	fields := gjson.GetManyBytes(raw, "iv", "value", "mac")
	ivB64, valueB64, mac := fields[0].String(), fields[1].String(), fields[2].String()
	if ivB64 == "" || valueB64 == "" || mac == "" {
		return "", ErrDecrypt
	}

	want, err := hex.DecodeString(o.mac(ivB64, valueB64))
	if err != nil {
		return "", ErrDecrypt
	}
	got, err := hex.DecodeString(mac)
	if err != nil || !hmac.Equal(want, got) {
		return "", ErrDecrypt
	}

	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrDecrypt
	}
	sealed, err := base64.StdEncoding.DecodeString(valueB64)
	if err != nil || len(sealed) == 0 || len(sealed)%aes.BlockSize != 0 {
		return "", ErrDecrypt
	}

	plain := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(o.block, iv).CryptBlocks(plain, sealed)
	plain, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func (o *OpenSSL) CreateIV() ([]byte, error) {
	return randomBytes(aes.BlockSize)
}

func (o *OpenSSL) mac(iv, value string) string {
	h := hmac.New(sha256.New, o.key)
	h.Write([]byte(iv + value))
	return hex.EncodeToString(h.Sum(nil))
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}

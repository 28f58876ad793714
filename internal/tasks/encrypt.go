// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/k7ctl/internal/encrypt"
	"github.com/staranto/k7ctl/internal/meta"
)

func encrypter(ctx context.Context, m meta.Meta, cmd *cli.Command) (*encrypt.Encrypter, error) {
	if m.Encrypters == nil {
		return nil, fmt.Errorf("no encrypt registry available")
	}
	return m.Encrypters.Instance(ctx, cmd.String("group"))
}

// EncryptIV prints a fresh IV for a group's engine, base64 encoded.
type EncryptIV struct{}

func (*EncryptIV) Name() string        { return "encrypt:iv" }
func (*EncryptIV) Description() string { return "print a fresh IV for an encrypt group" }
func (*EncryptIV) Flags() []cli.Flag   { return []cli.Flag{encryptGroupFlag()} }

func (*EncryptIV) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	e, err := encrypter(ctx, m, cmd)
	if err != nil {
		return err
	}
	iv, err := e.Engine.CreateIV()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout(m), base64.StdEncoding.EncodeToString(iv))
	return err
}

// EncryptEncode encrypts its argument, or stdin when there is none. A
// terminal on stdin is read without echo.
type EncryptEncode struct{}

func (*EncryptEncode) Name() string        { return "encrypt:encode" }
func (*EncryptEncode) Description() string { return "encrypt a message" }
func (*EncryptEncode) Flags() []cli.Flag   { return []cli.Flag{encryptGroupFlag()} }

func (*EncryptEncode) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	e, err := encrypter(ctx, m, cmd)
	if err != nil {
		return err
	}

	msg := cmd.Args().First()
	if cmd.NArg() == 0 {
		if msg, err = readSecret(stdin(m)); err != nil {
			return err
		}
	}

	ct, err := e.Encode(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout(m), ct)
	return err
}

// EncryptDecode decrypts its argument.
type EncryptDecode struct{}

func (*EncryptDecode) Name() string        { return "encrypt:decode" }
func (*EncryptDecode) Description() string { return "decrypt a message" }
func (*EncryptDecode) Flags() []cli.Flag   { return []cli.Flag{encryptGroupFlag()} }

func (*EncryptDecode) Execute(ctx context.Context, m meta.Meta, cmd *cli.Command) error {
	ct := cmd.Args().First()
	if ct == "" {
		return fmt.Errorf("%w: ciphertext", ErrUsage)
	}

	e, err := encrypter(ctx, m, cmd)
	if err != nil {
		return err
	}
	msg, err := e.Decode(ct)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout(m), msg)
	return err
}

// readSecret reads one message from r. Terminals get a prompt and no echo;
// anything else is read to EOF with a single trailing newline dropped.
func readSecret(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, "Message: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read message: %w", err)
		}
		return string(b), nil
	}

	b, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

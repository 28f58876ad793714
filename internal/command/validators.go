// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/output"
)

// GlobalFlagsValidator runs before every task. Per-flag checks live on the
// flags themselves.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	m := GetMeta(c)
	if m.Caches == nil || m.Encrypters == nil {
		return errors.New("task metadata is missing its registries")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if s, ok := value.(string); ok && slices.Contains(output.Formats, s) {
		return nil
	}
	return fmt.Errorf("must be one of %v", output.Formats)
}

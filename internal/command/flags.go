// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var versionFlag = &cli.BoolFlag{
	Name:        "version",
	Aliases:     []string{"v"},
	Usage:       "k7ctl version info",
	HideDefault: true,
}

// WithConfigSources appends config file sources to each flag that can take
// them and attaches the standard validators. An empty path leaves sources
// untouched.
func WithConfigSources(ns, path string, flags []cli.Flag) []cli.Flag {
	for _, f := range flags {
		switch flag := f.(type) {
		case *cli.StringFlag:
			if path != "" {
				NameSpacedValueChainFlagFromConfigFile(ns, path, flag)
			}
			switch flag.Name {
			case "output":
				flag.Validator = func(value string) error {
					return FlagValidators(value, JammedFlagValidator, OutputValidator)
				}
			case "group":
				flag.Validator = func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				}
			}
		case *cli.DurationFlag:
			if path != "" {
				flag.Sources.Chain = append(flag.Sources.Chain, configSources(ns, flag.Name, path)...)
			}
		case *cli.BoolFlag:
			if path != "" {
				flag.Sources.Chain = append(flag.Sources.Chain, configSources(ns, flag.Name, path)...)
			}
		}
	}
	return flags
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	flag.Sources.Chain = append(flag.Sources.Chain, configSources(ns, flag.Name, path)...)
	return flag
}

func configSources(ns, name, path string) []cli.ValueSource {
	return []cli.ValueSource{
		yaml.YAML("tasks."+ns+"."+name, altsrc.StringSourcer(path)),
		yaml.YAML("tasks."+name, altsrc.StringSourcer(path)),
	}
}

// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/staranto/k7ctl/internal/minion"
	"github.com/staranto/k7ctl/internal/output"
)

const bashCompletionScript = `# bash completion for k7ctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_k7ctl()
{
    local cur prev cmd opts
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "{{ names . }} completion --help --version" -- "$cur") )
        declare -F __ltrim_colon_completions >/dev/null && __ltrim_colon_completions "$cur"
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    case "$cmd" in
{{- range . }}
    {{ .Name }})
        opts="{{ flags .Flags }}"
        ;;
{{- end }}
    completion)
        COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
        return 0
        ;;
    *)
        opts=""
        ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "{{ formats }}" -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts --help" -- "$cur") )
    fi
    return 0
}

complete -F _k7ctl k7ctl
`

const zshCompletionScript = `#compdef k7ctl

_k7ctl() {
  local -a cmds
  cmds=(
{{- range . }}
    '{{ escape .Name }}:{{ .Description }}'
{{- end }}
    'completion:generate shell completion script'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'k7ctl tasks' cmds
    return
  fi

  case $words[2] in
{{- range . }}
    {{ .Name }})
      _arguments -C{{ range .Flags }} '{{ . }}[]'{{ end }} '*::args'
      ;;
{{- end }}
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _k7ctl k7ctl
`

type completionTask struct {
	Name        string
	Description string
	Flags       []string
}

var completionFuncs = template.FuncMap{
	"names": func(tasks []completionTask) string {
		names := make([]string, 0, len(tasks))
		for _, t := range tasks {
			names = append(names, t.Name)
		}
		return strings.Join(names, " ")
	},
	"flags":   func(flags []string) string { return strings.Join(flags, " ") },
	"escape":  func(s string) string { return strings.ReplaceAll(s, ":", `\:`) },
	"formats": func() string { return strings.Join(output.Formats, " ") },
}

// WriteCompletion renders the completion script for shell listing every
// task in r.
func WriteCompletion(w io.Writer, shell string, r *minion.Registry) error {
	var src string
	switch shell {
	case "bash":
		src = bashCompletionScript
	case "zsh":
		src = zshCompletionScript
	default:
		return fmt.Errorf("unsupported shell %q", shell)
	}

	var tasks []completionTask
	for _, t := range r.Tasks() {
		ct := completionTask{Name: t.Name(), Description: t.Description()}
		for _, f := range t.Flags() {
			for _, n := range f.Names() {
				if len(n) == 1 {
					ct.Flags = append(ct.Flags, "-"+n)
				} else {
					ct.Flags = append(ct.Flags, "--"+n)
				}
			}
		}
		tasks = append(tasks, ct)
	}

	tmpl, err := template.New(shell).Funcs(completionFuncs).Parse(src)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, tasks)
}

// CompletionCommandBuilder returns the completion subcommand. With no shell
// argument the shell is guessed from $SHELL.
func CompletionCommandBuilder(binary string, r *minion.Registry) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: binary + " completion [bash|zsh]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			shell := cmd.Args().First()
			if shell == "" {
				sh := os.Getenv("SHELL")
				switch {
				case strings.HasSuffix(sh, "zsh"):
					shell = "zsh"
				case strings.HasSuffix(sh, "bash"):
					shell = "bash"
				default:
					fmt.Fprintf(os.Stderr, "usage: %s completion [bash|zsh]\n", binary)
					return nil
				}
			}
			var w io.Writer = os.Stdout
			if cmd.Root().Writer != nil {
				w = cmd.Root().Writer
			}
			return WriteCompletion(w, shell, r)
		},
	}
}

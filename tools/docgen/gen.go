// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

type generator struct {
	tasksDir      string
	manOutDir     string
	tldrOutDir    string
	onlyIfChanged bool
}

// run renders every task doc and returns how many it processed.
func (g generator) run() (int, error) {
	for _, dir := range []string{g.manOutDir, g.tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating output dir %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(g.tasksDir)
	if err != nil {
		return 0, fmt.Errorf("reading tasks dir %s: %w", g.tasksDir, err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		raw, err := os.ReadFile(filepath.Join(g.tasksDir, e.Name()))
		if err != nil {
			return processed, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		manPath := filepath.Join(g.manOutDir, fmt.Sprintf("k7ctl-%s.1", slug))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), g.onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing man page for %s: %w", slug, err)
		}

		title, short := extractTitleAndShortDesc(string(raw))
		tldr := buildTLDR(taskName(slug), title, short, extractQuickExamples(string(raw)))
		tldrPath := filepath.Join(g.tldrOutDir, fmt.Sprintf("k7ctl-%s.md", slug))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), g.onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing TLDR for %s: %w", slug, err)
		}

		processed++
	}
	return processed, nil
}

// taskName maps a doc slug to its task: cache-get is cache:get.
func taskName(slug string) string {
	return strings.Replace(slug, "-", ":", 1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

var (
	h1Re      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	sectionRe = regexp.MustCompile(`(?mi)^#+\s*(.+?)\s*$`)
)

// section returns the body below the heading named name. With toEnd false
// it stops at the next heading; fenced blocks may hold "#" lines, so callers
// reading code blocks pass true.
func section(md, name string, toEnd bool) string {
	locs := sectionRe.FindAllStringSubmatchIndex(md, -1)
	for i, loc := range locs {
		if !strings.EqualFold(md[loc[2]:loc[3]], name) {
			continue
		}
		end := len(md)
		if !toEnd && i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return md[loc[1]:end]
	}
	return ""
}

func extractTitleAndShortDesc(md string) (title, short string) {
	if m := h1Re.FindStringSubmatch(md); m != nil {
		title = strings.TrimSpace(m[1])
	}

	var b strings.Builder
	for _, ln := range strings.Split(section(md, "Short description", false), "\n") {
		if strings.TrimSpace(ln) == "" {
			if b.Len() > 0 {
				break
			}
			continue
		}
		b.WriteString(strings.TrimSpace(ln))
		b.WriteString(" ")
	}
	short = strings.TrimSpace(b.String())
	if short == "" && title != "" {
		short = title + "."
	}
	return
}

type example struct {
	Desc string
	Cmd  string
}

// extractQuickExamples reads the first fenced block of the Quick examples
// section. A "# comment" line describes the command that follows it.
func extractQuickExamples(md string) []example {
	body := section(md, "Quick examples", true)
	const fence = "```"
	start := strings.Index(body, fence)
	if start < 0 {
		return nil
	}
	body = body[start+len(fence):]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	}
	end := strings.Index(body, fence)
	if end < 0 {
		return nil
	}

	var exs []example
	var desc string
	for _, ln := range strings.Split(body[:end], "\n") {
		s := strings.TrimSpace(ln)
		switch {
		case s == "":
		case strings.HasPrefix(s, "#"):
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: s})
			desc = ""
		}
	}
	return exs
}

var placeholderRe = regexp.MustCompile(`<([^<>]+)>`)

// sanitizeCommand turns <placeholder> into the tldr {{placeholder}} style.
func sanitizeCommand(cmd string) string {
	return placeholderRe.ReplaceAllString(strings.TrimSpace(cmd), "{{$1}}")
}

func buildTLDR(task, title, short string, exs []example) string {
	var b strings.Builder
	b.WriteString("# k7ctl " + task + "\n\n")
	switch {
	case short != "":
		b.WriteString("> " + short + "\n")
	case title != "":
		b.WriteString("> " + title + "\n")
	default:
		b.WriteString("> k7ctl " + task + "\n")
	}
	b.WriteString("> More information: `k7ctl " + task + " --help`.\n\n")

	if len(exs) == 0 {
		b.WriteString("- Show help for the task:\n\n")
		b.WriteString("`k7ctl " + task + " --help`\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + sanitizeCommand(ex.Cmd) + "`\n")
	}
	return b.String()
}

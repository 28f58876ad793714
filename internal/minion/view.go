// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package minion

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/staranto/k7ctl/internal/output"
)

//go:embed views
var views embed.FS

// TaskRow is one line of the task listing.
type TaskRow struct {
	Name        string
	Description string
}

var funcs = template.FuncMap{
	"table": func(rows []TaskRow) string {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []string{"  " + r.Name, r.Description})
		}
		return output.Table(nil, cells)
	},
}

// Render executes the view called name, e.g. "help/list", against data.
func Render(name string, data any) (string, error) {
	file := "views/" + strings.TrimSuffix(name, ".tmpl") + ".tmpl"
	tmpl, err := template.New(path.Base(file)).Funcs(funcs).ParseFS(views, file)
	if err != nil {
		return "", fmt.Errorf("failed to load view %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render view %s: %w", name, err)
	}
	return buf.String(), nil
}

// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"gopkg.in/yaml.v3"
)

// Formats accepted by Emit.
var Formats = []string{"text", "json", "raw", "yaml"}

// Emit writes v to w in the given format. text renders maps as a two column
// key/value table; raw writes strings and byte slices untouched.
func Emit(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "raw":
		switch v := v.(type) {
		case []byte:
			_, err := w.Write(v)
			return err
		case string:
			_, err := io.WriteString(w, v)
			return err
		}
		return Emit(w, "json", v)
	case "text", "":
		if m, ok := v.(map[string]any); ok {
			_, err := fmt.Fprintln(w, KeyValueTable(m))
			return err
		}
		_, err := fmt.Fprintln(w, InterfaceToString(v))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Table renders rows with the borderless style used for all text output.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Rows(rows...)

	if len(headers) > 0 {
		t = t.Headers(headers...).BorderHeader(false)
	}
	return t.String()
}

// KeyValueTable renders m sorted by key.
func KeyValueTable(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, InterfaceToString(m[k], "-")})
	}
	return Table([]string{"Key", "Value"}, rows)
}

// InterfaceToString renders a scalar or marshals anything else to JSON. nil
// renders as emptyValue (default "").
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	switch value := value.(type) {
	case nil:
		return emptyValue[0]
	case string:
		return value
	case []byte:
		return string(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

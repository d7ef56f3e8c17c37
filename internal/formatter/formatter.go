// Package formatter renders key listings for the command line.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output format of a listing.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// Formats lists the accepted formats in help order.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat accepts a format name in any case. Empty means table.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected table|json|yaml|toml)", s)
}

// Row kinds.
const (
	KindKey   = "key"
	KindField = "field"
)

// Row is one child key or field of a listing.
type Row struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Kind string `json:"kind" yaml:"kind" toml:"kind"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Data string `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
}

// Listing is the content of one key.
type Listing struct {
	Key  string `json:"key" yaml:"key" toml:"key"`
	Rows []Row  `json:"rows" yaml:"rows" toml:"rows"`
}

// Options tune the table format. Structured formats ignore them.
type Options struct {
	NoColor     bool
	MaxColWidth uint
	Separator   string // appended to child key names
}

// Write renders l in format f.
func Write(w io.Writer, l Listing, f Format, opts Options) error {
	if l.Rows == nil {
		l.Rows = []Row{}
	}
	switch f {
	case FormatTable, "":
		return writeTable(w, l, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case FormatYAML:
		return writeYAML(w, l)
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(l)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// writeYAML emits multi-line data, such as REG_MULTI_SZ items, as literal blocks.
func writeYAML(w io.Writer, l Listing) error {
	var node yaml.Node
	if err := node.Encode(l); err != nil {
		return err
	}
	literalMultiline(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func literalMultiline(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		literalMultiline(c)
	}
}

package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleListing() Listing {
	return Listing{
		Key: `HKEY_CURRENT_USER\Environment`,
		Rows: []Row{
			{Name: "Sub", Kind: KindKey},
			{Name: "Path", Kind: KindField, Type: "REG_EXPAND_SZ", Data: `C:\bin`},
			{Name: "", Kind: KindField, Type: "REG_SZ", Data: "default"},
			{Name: "Lines", Kind: KindField, Type: "REG_MULTI_SZ", Data: "one\ntwo"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		" yaml": FormatYAML,
		"toml":  FormatTOML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleListing(), FormatTable, Options{NoColor: true, Separator: `\`}))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.True(t, strings.HasPrefix(lines[0], "NAME"))
	require.Contains(t, lines[1], `Sub\`)
	require.Contains(t, lines[1], "KEY")
	require.Contains(t, out, "REG_EXPAND_SZ")
	require.Contains(t, out, "(default)")
	require.NotContains(t, out, "\x1b[")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Listing{Key: "k"}, FormatTable, Options{NoColor: true}))
	require.Equal(t, 1, strings.Count(strings.TrimRight(buf.String(), "\n"), "\n")+1)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleListing(), FormatJSON, Options{}))

	var got Listing
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, sampleListing(), got)
	require.NotContains(t, buf.String(), `"data": ""`)
}

func TestWriteJSONEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Listing{Key: "k"}, FormatJSON, Options{}))
	require.Contains(t, buf.String(), `"rows": []`)
}

func TestWriteYAMLUsesLiteralBlocks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleListing(), FormatYAML, Options{}))
	require.Contains(t, buf.String(), "data: |-\n")

	var got Listing
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, sampleListing(), got)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleListing(), FormatTOML, Options{}))
	require.Contains(t, buf.String(), "[[rows]]")

	var got Listing
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, sampleListing(), got)
}

func TestWriteUnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, Listing{}, Format("xml"), Options{}))
}

package formatter

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const defaultMaxColWidth = 80

func writeTable(w io.Writer, l Listing, opts Options) error {
	color.NoColor = opts.NoColor
	keyColor := color.New(color.FgBlue, color.Bold).SprintFunc()
	header := color.New(color.Bold).SprintFunc()

	table := uitable.New()
	table.MaxColWidth = opts.MaxColWidth
	if table.MaxColWidth == 0 {
		table.MaxColWidth = defaultMaxColWidth
	}
	table.Wrap = true
	table.AddRow(header("NAME"), header("TYPE"), header("DATA"))
	for _, r := range l.Rows {
		if r.Kind == KindKey {
			table.AddRow(keyColor(r.Name+opts.Separator), "KEY", "")
			continue
		}
		name := r.Name
		if name == "" {
			name = "(default)"
		}
		table.AddRow(name, r.Type, r.Data)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

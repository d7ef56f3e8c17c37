package cmd

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/hivedit/internal/completion"
)

// completionEngine opens the configured store for shell completion, which
// runs without the persistent pre-run.
func (o *rootOptions) completionEngine(cmd *cobra.Command) (*completion.Engine, bool) {
	if err := o.loadSettings(cmd.Flags()); err != nil {
		return nil, false
	}
	opened, err := openStore(o.run, logr.Discard())
	if err != nil {
		return nil, false
	}
	return completion.NewEngine(opened.store), true
}

func (o *rootOptions) completeKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, ok := o.completionEngine(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveError
	}
	return completion.Texts(e.Keys(toComplete)), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (o *rootOptions) completePointer(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, ok := o.completionEngine(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveError
	}
	return completion.Texts(e.Pointers(toComplete)), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

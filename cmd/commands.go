package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/hivedit/internal/cel"
	"github.com/oakwood-commons/hivedit/internal/fieldeditor"
	"github.com/oakwood-commons/hivedit/internal/formatter"
	"github.com/oakwood-commons/hivedit/internal/limiter"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/pkg/logger"
	"github.com/oakwood-commons/hivedit/pkg/settings"
)

var errNeedField = errors.New("expected KEY->FIELD")

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print hivedit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}

// splitPointer requires a KEY->FIELD argument.
func splitPointer(arg string) (key, field string, err error) {
	key, field, ok := store.SplitFieldPointer(arg)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", errNeedField, arg)
	}
	return key, field, nil
}

// useStore opens the store named by the run settings in ctx.
func (o *rootOptions) useStore(ctx context.Context) (*store.Store, error) {
	o.steps.Set(stepStore)
	opened, err := openStore(settings.FromContext(ctx), *logger.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	o.steps.Set(stepCommand)
	return opened.store, nil
}

func (o *rootOptions) openKey(ctx context.Context, path string, mask store.Access) (*store.Key, error) {
	s, err := o.useStore(ctx)
	if err != nil {
		return nil, err
	}
	return s.Open(path, mask)
}

func closeKey(k *store.Key, err *error) {
	if cerr := k.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// lsOptions are the flags of the ls command.
type lsOptions struct {
	where  string
	output string
	limit  limiter.Config
}

func newLsCmd(o *rootOptions) *cobra.Command {
	opts := &lsOptions{}
	cmd := &cobra.Command{
		Use:   "ls [KEY]",
		Short: "List the child keys and fields of a key",
		Example: "  hivedit ls\n  hivedit ls 'HKEY_CURRENT_USER\\Environment' -o yaml\n" +
			"  hivedit ls 'HKEY_CURRENT_USER\\Environment' --where 'field.type_name == \"REG_EXPAND_SZ\"'\n",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: o.completeKeys,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := store.Root
			if len(args) == 1 {
				path = args[0]
			}
			format, err := formatter.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			if err := opts.limit.Validate(); err != nil {
				return err
			}
			var eval *cel.Evaluator
			if opts.where != "" {
				if eval, err = cel.NewEvaluator(); err != nil {
					return err
				}
				if err := eval.Check(opts.where); err != nil {
					return fmt.Errorf("--where: %w", err)
				}
			}
			k, err := o.openKey(cmd.Context(), path, store.AccessRead)
			if err != nil {
				return err
			}
			defer closeKey(k, &err)
			listing, err := listKey(k, eval, opts.where)
			if err != nil {
				return err
			}
			listing.Rows = limiter.Apply(opts.limit, listing.Rows)
			return formatter.Write(cmd.OutOrStdout(), listing, format, formatter.Options{
				NoColor:   settings.FromContext(cmd.Context()).NoColor,
				Separator: store.Sep,
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.where, "where", "", "CEL filter over key and field (name, type, type_name, data, supported); hides child keys")
	f.StringVarP(&opts.output, "output", "o", string(formatter.FormatTable), "output format: table|json|yaml|toml")
	f.IntVar(&opts.limit.Limit, "limit", 0, "show only the first N rows")
	f.IntVar(&opts.limit.Offset, "offset", 0, "skip the first N rows")
	f.IntVar(&opts.limit.Tail, "tail", 0, "show only the last N rows")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(formatter.Formats))
		for _, f := range formatter.Formats {
			names = append(names, string(f))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// listKey collects the child keys (sorted, case-insensitive) and the fields
// of k. A where expression keeps only the fields it matches.
func listKey(k *store.Key, eval *cel.Evaluator, where string) (formatter.Listing, error) {
	listing := formatter.Listing{Key: k.Path()}
	if where == "" {
		names, err := k.ChildNames()
		if err != nil {
			return listing, err
		}
		slices.SortStableFunc(names, func(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) })
		for _, name := range names {
			listing.Rows = append(listing.Rows, formatter.Row{Name: name, Kind: formatter.KindKey})
		}
	}
	if k.IsRoot() {
		return listing, nil
	}

	fields, err := k.Fields()
	if err != nil {
		return listing, err
	}
	for _, f := range fields {
		data := ""
		if v, err := f.Data(); err == nil {
			data = v.Text()
		}
		if eval != nil {
			ok, err := eval.Match(where, cel.Facts{
				Key:       k.Path(),
				Name:      f.Name(),
				Type:      uint32(f.Type()),
				TypeName:  f.Type().String(),
				Data:      data,
				Supported: slices.Contains(fieldeditor.StringTypes, f.Type()),
			})
			if err != nil {
				return listing, fmt.Errorf("--where on %s: %w", f.Name(), err)
			}
			if !ok {
				continue
			}
		}
		listing.Rows = append(listing.Rows, formatter.Row{
			Name: f.Name(),
			Kind: formatter.KindField,
			Type: f.Type().String(),
			Data: data,
		})
	}
	return listing, nil
}

func newGetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "get KEY->FIELD",
		Short:             "Print the data of a field",
		Example:           "  hivedit get 'HKEY_CURRENT_USER\\Environment->Path'\n",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: o.completePointer,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path, name, err := splitPointer(args[0])
			if err != nil {
				return err
			}
			k, err := o.openKey(cmd.Context(), path, store.AccessRead)
			if err != nil {
				return err
			}
			defer closeKey(k, &err)
			v, err := k.ReadField(name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.Text())
			return err
		},
	}
}

func newSetCmd(o *rootOptions) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "set KEY->FIELD VALUE",
		Short: "Write a string field",
		Long: `Write a string field, creating the key when it is missing. An existing
field keeps its type unless --type is given; a new field defaults to REG_SZ.`,
		Example: "  hivedit set 'HKEY_CURRENT_USER\\Environment->EDITOR' vim\n" +
			"  hivedit set 'HKEY_CURRENT_USER\\Environment->Path' '%USERPROFILE%\\bin' --type expand_sz\n",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: o.completePointer,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path, name, err := splitPointer(args[0])
			if err != nil {
				return err
			}
			typ := store.TypeString
			if cmd.Flags().Changed("type") {
				if typ, err = store.ParseFieldType(typeName); err != nil {
					return err
				}
				if !typ.IsString() {
					return fmt.Errorf("%w: %s is not a string type", store.ErrInvalidType, typ)
				}
			}
			s, err := o.useStore(cmd.Context())
			if err != nil {
				return err
			}
			k, err := s.Open(path, store.AccessAll)
			if errors.Is(err, store.ErrNotFound) {
				if err = s.CreateKey(path); err != nil {
					return err
				}
				k, err = s.Open(path, store.AccessAll)
			}
			if err != nil {
				return err
			}
			defer closeKey(k, &err)

			if old, rerr := k.ReadField(name); rerr == nil && !cmd.Flags().Changed("type") {
				typ = old.Type
			}
			if !typ.IsString() {
				return fmt.Errorf("%w: %s is not a string type", store.ErrInvalidType, typ)
			}
			return k.WriteField(name, store.StringValue(typ, args[1]))
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "REG_SZ", "field type: REG_SZ or REG_EXPAND_SZ")
	return cmd
}

func newMkkeyCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "mkkey KEY",
		Short:             "Create a key and its missing ancestors",
		Example:           "  hivedit mkkey 'HKEY_CURRENT_USER\\Software\\Example'\n",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: o.completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.useStore(cmd.Context())
			if err != nil {
				return err
			}
			return s.CreateKey(args[0])
		},
	}
}

func newRmCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "rm KEY->FIELD",
		Short:             "Delete a field",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: o.completePointer,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path, name, err := splitPointer(args[0])
			if err != nil {
				return err
			}
			k, err := o.openKey(cmd.Context(), path, store.AccessAll)
			if err != nil {
				return err
			}
			defer closeKey(k, &err)
			return k.DeleteField(name)
		},
	}
}

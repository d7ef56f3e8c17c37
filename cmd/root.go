package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	rdebug "runtime/debug"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/hivedit/internal/store/diskstore"
	"github.com/oakwood-commons/hivedit/pkg/logger"
	"github.com/oakwood-commons/hivedit/pkg/settings"
)

// Flag names double as viper keys.
const (
	flagMenuConfig               = "menu-config"
	flagUIConfig                 = "ui-config"
	flagFieldEditorConfig        = "field-editor-config"
	flagMenuConfigDefault        = "menu-config-default"
	flagUIConfigDefault          = "ui-config-default"
	flagFieldEditorConfigDefault = "field-editor-config-default"
	flagBackend                  = "backend"
	flagBaseDir                  = "base-dir"
	flagLogLevel                 = "log-level"
	flagLogFile                  = "log-file"
	flagDebug                    = "debug"
	flagNoColor                  = "no-color"
	flagConfig                   = "config"
	flagPath                     = "path"
)

// settingsFileName is looked up in the home directory when --config is not given.
const settingsFileName = ".hivedit"

// rootOptions is the state shared by the root command and its subcommands.
type rootOptions struct {
	run        *settings.Run
	v          *viper.Viper
	steps      *stepTracker
	configFile string
	debug      bool

	dumpMenu        bool
	dumpUI          bool
	dumpFieldEditor bool

	closeLog func() error
}

// finishLog flushes and closes the session log of an interactive run.
func (o *rootOptions) finishLog() error {
	if o.closeLog == nil {
		return nil
	}
	logger.Sync()
	closeFn := o.closeLog
	o.closeLog = nil
	return closeFn()
}

func (o *rootOptions) dumping() bool {
	return o.dumpMenu || o.dumpUI || o.dumpFieldEditor
}

// Execute runs the CLI. Failures carry the startup step they happened in; an
// interrupt is not a failure.
func Execute() (err error) {
	steps := &stepTracker{}
	steps.Set(stepInit)
	defer func() {
		if r := recover(); r != nil {
			se := &StepError{Step: steps.Current(), Err: fmt.Errorf("panic: %v", r), Stack: rdebug.Stack()}
			logger.GetGlobalLogger().Error(se.Err, "unhandled panic", logger.StepKey, se.Step)
			err = se
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root, o := newRootCmd(steps)
	defer func() {
		if cerr := o.finishLog(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := root.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		se := &StepError{Step: steps.Current(), Err: err}
		logger.GetGlobalLogger().Error(err, "run failed", logger.StepKey, se.Step)
		return se
	}
	return nil
}

func newRootCmd(steps *stepTracker) (*cobra.Command, *rootOptions) {
	o := &rootOptions{run: settings.NewCliParams(), v: viper.New(), steps: steps}

	root := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Terminal editor for registry keys and string fields",
		Long: `hivedit browses a hierarchical registry of keys and fields and edits
string fields one item per line. On Windows it edits the system registry;
elsewhere it uses a portable on-disk store.`,
		Example: "\n  hivedit\n  hivedit --path 'HKEY_CURRENT_USER\\Environment->Path'\n  hivedit --backend memory\n  hivedit ls 'HKEY_CURRENT_USER\\Environment' --where 'field.name.startsWith(\"T\")'\n",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.dumping() {
				return o.dumpDefaults(cmd.OutOrStdout())
			}
			return runInteractive(cmd.Context(), o)
		},
	}

	pf := root.PersistentFlags()
	pf.String(flagBackend, string(settings.BackendAuto), "store backend: auto|registry|disk|memory")
	pf.String(flagBaseDir, diskstore.DefaultBaseDir, "base directory of the disk backend")
	pf.Int8(flagLogLevel, 0, "minimum log level (zap levels; -1 enables debug)")
	pf.StringVar(&o.configFile, flagConfig, "", "settings file (default ~/.hivedit.yaml)")
	pf.BoolVar(&o.debug, flagDebug, false, "log at debug level")
	pf.Bool(flagNoColor, false, "disable color output")

	f := root.Flags()
	f.StringP(flagMenuConfig, "m", "", "menu config file (YAML or TOML)")
	f.StringP(flagUIConfig, "u", "", "UI config file: theme and layout")
	f.StringP(flagFieldEditorConfig, "f", "", "field editor rules file")
	f.BoolVar(&o.dumpMenu, flagMenuConfigDefault, false, "print the default menu config and exit")
	f.BoolVar(&o.dumpUI, flagUIConfigDefault, false, "print the default UI config and exit")
	f.BoolVar(&o.dumpFieldEditor, flagFieldEditorConfigDefault, false, "print the default field editor config and exit")
	f.String(flagLogFile, "", "log file of interactive sessions (default hivedit.log in the base directory)")
	f.String(flagPath, "", "key or KEY->FIELD to open on start")

	root.Version = cliVersionString()
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(
		newVersionCmd(),
		newLsCmd(o),
		newGetCmd(o),
		newSetCmd(o),
		newRmCmd(o),
		newMkkeyCmd(o),
	)
	return root, o
}

// prepare layers settings (flags > HIVEDIT_* environment > settings file >
// defaults), starts the logger and stores both in the command context.
func (o *rootOptions) prepare(cmd *cobra.Command) error {
	o.steps.Set(stepSettings)
	if err := o.loadSettings(cmd.Flags()); err != nil {
		return err
	}

	o.steps.Set(stepLogger)
	level := o.run.MinLogLevel
	if o.debug {
		level = int8(zapcore.DebugLevel)
	}
	var sink []zapcore.WriteSyncer
	if cmd.Parent() == nil && !o.dumping() {
		dir, err := homedir.Expand(o.run.BaseDir)
		if err != nil {
			return fmt.Errorf("expand base dir: %w", err)
		}
		ws, closeFn, err := logger.OpenSessionLog(dir, o.run.LogFile)
		if err != nil {
			return err
		}
		sink, o.closeLog = append(sink, ws), closeFn
	}
	lgr := logger.Get(level, sink...)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, o.run)
	cmd.SetContext(ctx)
	return nil
}

func (o *rootOptions) loadSettings(flags *pflag.FlagSet) error {
	v := o.v
	v.SetEnvPrefix(settings.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read settings %s: %w", o.configFile, err)
		}
	} else if home, err := homedir.Dir(); err == nil {
		v.SetConfigName(settingsFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read settings %s: %w", filepath.Join(home, settingsFileName+".yaml"), err)
			}
		}
	}

	backend, err := parseBackend(v.GetString(flagBackend))
	if err != nil {
		return err
	}
	o.run.Backend = backend
	o.run.BaseDir = v.GetString(flagBaseDir)
	o.run.MinLogLevel = int8(v.GetInt(flagLogLevel))
	o.run.NoColor = v.GetBool(flagNoColor)
	o.run.LogFile = v.GetString(flagLogFile)
	o.run.MenuConfigPath = v.GetString(flagMenuConfig)
	o.run.UIConfigPath = v.GetString(flagUIConfig)
	o.run.FieldEditorConfigPath = v.GetString(flagFieldEditorConfig)
	o.run.StartPath = v.GetString(flagPath)
	if v.GetBool(flagDebug) {
		o.debug = true
	}
	return nil
}

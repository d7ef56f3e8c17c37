package cmd

import (
	"context"
	"errors"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/hivedit/internal/editor"
	"github.com/oakwood-commons/hivedit/internal/store/diskstore"
	"github.com/oakwood-commons/hivedit/internal/ui"
	"github.com/oakwood-commons/hivedit/pkg/logger"
	"github.com/oakwood-commons/hivedit/pkg/settings"
)

var errNotTerminal = errors.New("the editor needs a terminal; use the ls/get/set/rm subcommands for scripting")

var (
	isTerminal       = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }
	openTerminalIOFn = openTerminalIO
)

func runInteractive(ctx context.Context, o *rootOptions) error {
	log := *logger.FromContext(ctx)
	run := settings.FromContext(ctx)

	o.steps.Set(stepConfig)
	cfg, err := loadEditorConfig(run)
	if err != nil {
		return err
	}

	o.steps.Set(stepTerminal)
	progOpts, cleanup, err := getProgramOptions()
	if err != nil {
		return err
	}
	defer cleanup()

	o.steps.Set(stepStore)
	opened, err := openStore(run, log)
	if err != nil {
		return err
	}

	o.steps.Set(stepEditor)
	dialogs := ui.NewDialogs(log.WithName("dialogs"))
	frame, err := ui.Frame(cfg.ui, run.NoColor, log.WithName("fieldeditor"))
	if err != nil {
		return err
	}
	ed, err := editor.New(opened.store, editor.Options{
		Factory: cfg.factory,
		Dialogs: dialogs,
		Frame:   frame,
		Log:     log.WithName("editor"),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := ed.Close(); err != nil {
			log.V(1).Info("close editor", "error", err.Error())
		}
	}()
	if run.StartPath != "" {
		if !ed.OpenPointer(run.StartPath) {
			log.Info("start path not opened", logger.PathKey, run.StartPath)
		}
	}

	o.steps.Set(stepMenu)
	tree, err := ed.BuildMenu(cfg.menu)
	if err != nil {
		return err
	}

	var changes <-chan diskstore.Change
	if opened.disk != nil {
		o.steps.Set(stepWatch)
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		changes, err = opened.disk.Watch(watchCtx, log.WithName("watch"))
		if err != nil {
			// the editor works without live reload
			log.Error(err, "watch store")
			changes = nil
		}
	}

	o.steps.Set(stepInteractive)
	return ui.Run(ctx, ui.Options{
		Editor:  ed,
		Dialogs: dialogs,
		Menu:    tree,
		Config:  cfg.ui,
		NoColor: run.NoColor,
		Changes: changes,
		Log:     log.WithName("ui"),
	}, progOpts...)
}

// getProgramOptions checks for a terminal. When stdin is redirected the
// terminal device is opened directly.
func getProgramOptions() ([]tea.ProgramOption, func(), error) {
	cleanup := func() {}
	if !isTerminal(os.Stdout) {
		return nil, cleanup, errNotTerminal
	}
	if isTerminal(os.Stdin) {
		return nil, cleanup, nil
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		if ttyIn != nil {
			_ = ttyIn.Close()
		}
		return nil, cleanup, errNotTerminal
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}
	opts := []tea.ProgramOption{tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut))
	}
	return opts, cleanup, nil
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}

	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}

	return "/dev/tty", "/dev/tty"
}

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/hivedit/pkg/settings"
)

func TestStepErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := error(&StepError{Step: stepStore, Err: cause})

	require.ErrorIs(t, err, cause)
	require.Equal(t, "store: boom", err.Error())
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, &StepError{Step: stepConfig, Err: errors.New("bad yaml")})
	require.Equal(t, "error during config: bad yaml\n", buf.String())

	buf.Reset()
	PrintError(&buf, &StepError{Step: stepInit, Err: errors.New("panic: x"), Stack: []byte("goroutine 1")})
	require.Contains(t, buf.String(), "goroutine 1")

	buf.Reset()
	PrintError(&buf, errors.New("plain"))
	require.Equal(t, "plain\n", buf.String())
}

func TestStepTrackerRecordsFailingStep(t *testing.T) {
	steps := &stepTracker{}
	root, o := newRootCmd(steps)
	t.Cleanup(func() { _ = o.finishLog() })
	root.SetArgs([]string{"ls", "--backend", "disk", "--base-dir", t.TempDir(), `HKEY_CURRENT_USER\Missing`})
	require.Error(t, root.Execute())
	require.Equal(t, stepCommand, steps.Current())

	steps = &stepTracker{}
	root, o = newRootCmd(steps)
	t.Cleanup(func() { _ = o.finishLog() })
	root.SetArgs([]string{"ls", "--backend", "nope"})
	require.Error(t, root.Execute())
	require.Equal(t, stepSettings, steps.Current())
}

func TestParseBackend(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    settings.Backend
		wantErr bool
	}{
		"empty":    {in: "", want: settings.BackendAuto},
		"auto":     {in: "auto", want: settings.BackendAuto},
		"disk":     {in: "Disk", want: settings.BackendDisk},
		"memory":   {in: " memory ", want: settings.BackendMemory},
		"registry": {in: "REGISTRY", want: settings.BackendRegistry},
		"unknown":  {in: "tape", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseBackend(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveBackend(t *testing.T) {
	require.Equal(t, settings.BackendRegistry, resolveBackend(settings.BackendAuto, "windows"))
	require.Equal(t, settings.BackendDisk, resolveBackend(settings.BackendAuto, "linux"))
	require.Equal(t, settings.BackendMemory, resolveBackend(settings.BackendMemory, "windows"))
	require.Equal(t, settings.BackendRegistry, resolveBackend(settings.BackendRegistry, "darwin"))
}

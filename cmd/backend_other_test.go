//go:build !windows

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/hivedit/pkg/settings"
)

func TestOpenStoreRegistryOffWindows(t *testing.T) {
	run := settings.NewCliParams()
	run.Backend = settings.BackendRegistry
	_, err := openStore(run, discardLogger())
	require.ErrorIs(t, err, errNoRegistry)

	_, err = runCLI(t, "ls", "--backend", "registry")
	require.ErrorIs(t, err, errNoRegistry)
}

//go:build windows

package cmd

import (
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/winreg"
)

func registryBackend() (store.Backend, error) {
	return winreg.New(), nil
}

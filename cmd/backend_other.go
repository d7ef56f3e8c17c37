//go:build !windows

package cmd

import (
	"errors"

	"github.com/oakwood-commons/hivedit/internal/store"
)

var errNoRegistry = errors.New("the registry backend is only available on Windows; use --backend disk")

func registryBackend() (store.Backend, error) {
	return nil, errNoRegistry
}

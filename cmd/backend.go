package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/diskstore"
	"github.com/oakwood-commons/hivedit/internal/store/memstore"
	"github.com/oakwood-commons/hivedit/pkg/settings"
)

// parseBackend validates a --backend value.
func parseBackend(s string) (settings.Backend, error) {
	switch b := settings.Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return settings.BackendAuto, nil
	case settings.BackendAuto, settings.BackendRegistry, settings.BackendDisk, settings.BackendMemory:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto|registry|disk|memory)", s)
	}
}

// resolveBackend turns auto into the backend for this platform.
func resolveBackend(b settings.Backend, goos string) settings.Backend {
	if b != settings.BackendAuto {
		return b
	}
	if goos == "windows" {
		return settings.BackendRegistry
	}
	return settings.BackendDisk
}

// openedStore is the store of a run. disk is set for the disk backend, which
// can be watched for changes.
type openedStore struct {
	store *store.Store
	disk  *diskstore.Backend
}

func openStore(run *settings.Run, log logr.Logger) (openedStore, error) {
	var backend store.Backend
	var disk *diskstore.Backend
	kind := resolveBackend(run.Backend, runtime.GOOS)
	switch kind {
	case settings.BackendRegistry:
		b, err := registryBackend()
		if err != nil {
			return openedStore{}, err
		}
		backend = b
	case settings.BackendDisk:
		b, err := diskstore.New(run.BaseDir)
		if err != nil {
			return openedStore{}, err
		}
		backend, disk = b, b
	case settings.BackendMemory:
		backend = memstore.NewDemo()
	default:
		return openedStore{}, fmt.Errorf("unknown backend %q", kind)
	}
	log.V(1).Info("store opened", "backend", string(kind))
	return openedStore{store: store.New(backend, store.WithLogger(log.WithName("store"))), disk: disk}, nil
}

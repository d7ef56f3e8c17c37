//go:build windows

package winreg

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/oakwood-commons/hivedit/internal/store"
)

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001a
	smtoAbortIfHung = 0x0002

	// BroadcastTimeoutMS bounds the WM_SETTINGCHANGE broadcast.
	BroadcastTimeoutMS = 10
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

var hives = map[string]registry.Key{
	"HKEY_CLASSES_ROOT":   registry.CLASSES_ROOT,
	"HKEY_CURRENT_CONFIG": registry.CURRENT_CONFIG,
	"HKEY_CURRENT_USER":   registry.CURRENT_USER,
	"HKEY_LOCAL_MACHINE":  registry.LOCAL_MACHINE,
	"HKEY_USERS":          registry.USERS,
}

// Backend opens keys of the native registry, 64-bit view.
type Backend struct{}

// New returns the registry backend.
func New() *Backend {
	return &Backend{}
}

func accessMask(mask store.Access) uint32 {
	var m uint32
	switch mask {
	case store.AccessRead:
		m = registry.READ
	case store.AccessWrite:
		m = registry.WRITE
	default:
		m = registry.ALL_ACCESS
	}
	return m | registry.WOW64_64KEY
}

// OpenKey implements store.Backend.
func (b *Backend) OpenKey(path string, mask store.Access) (store.Handle, error) {
	hive, rest := store.SplitHive(path)
	root, ok := hives[hive]
	if !ok {
		return nil, store.ErrInvalidPath
	}
	k, err := registry.OpenKey(root, rest, accessMask(mask))
	if err != nil {
		return nil, mapError(err)
	}
	return &handle{k: k}, nil
}

// CreateKey implements store.KeyCreator.
func (b *Backend) CreateKey(path string) error {
	hive, rest := store.SplitHive(path)
	root, ok := hives[hive]
	if !ok {
		return store.ErrInvalidPath
	}
	if rest == "" {
		return nil
	}
	k, _, err := registry.CreateKey(root, rest, registry.CREATE_SUB_KEY|registry.WOW64_64KEY)
	if err != nil {
		return mapError(err)
	}
	return k.Close()
}

// Broadcast sends WM_SETTINGCHANGE for "Environment" and waits at most
// BroadcastTimeoutMS for hung windows.
func (b *Backend) Broadcast() error {
	param, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return err
	}
	var result uintptr
	r, _, callErr := procSendMessageTimeoutW.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(param)),
		smtoAbortIfHung,
		BroadcastTimeoutMS,
		uintptr(unsafe.Pointer(&result)),
	)
	if r == 0 {
		return fmt.Errorf("SendMessageTimeout: %w", callErr)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, registry.ErrNotExist):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %v", store.ErrPermission, err)
	default:
		return err
	}
}

type handle struct {
	k     registry.Key
	names []string
}

func (h *handle) SubKeyNames() ([]string, error) {
	names, err := h.k.ReadSubKeyNames(0)
	if err != nil {
		return nil, mapError(err)
	}
	return names, nil
}

func (h *handle) EnumField(index int) (string, store.FieldType, error) {
	if index == 0 || h.names == nil {
		names, err := h.k.ReadValueNames(0)
		if err != nil {
			return "", store.TypeNone, mapError(err)
		}
		h.names = names
	}
	if index < 0 || index >= len(h.names) {
		return "", store.TypeNone, store.ErrNoMoreItems
	}
	name := h.names[index]
	_, typ, err := h.k.GetValue(name, nil)
	if err != nil {
		return "", store.TypeNone, mapError(err)
	}
	return name, store.FieldType(typ), nil
}

func (h *handle) ReadField(name string) (store.Value, error) {
	_, typ, err := h.k.GetValue(name, nil)
	if err != nil {
		return store.Value{}, mapError(err)
	}
	v := store.Value{Type: store.FieldType(typ)}
	switch typ {
	case registry.SZ, registry.EXPAND_SZ:
		v.String, _, err = h.k.GetStringValue(name)
	case registry.MULTI_SZ:
		v.Strings, _, err = h.k.GetStringsValue(name)
	case registry.DWORD, registry.QWORD:
		v.Integer, _, err = h.k.GetIntegerValue(name)
	default:
		var n int
		n, _, err = h.k.GetValue(name, nil)
		if err == nil {
			v.Binary = make([]byte, n)
			_, _, err = h.k.GetValue(name, v.Binary)
		}
	}
	if err != nil {
		return store.Value{}, mapError(err)
	}
	return v, nil
}

func (h *handle) WriteField(name string, v store.Value) error {
	var err error
	switch v.Type {
	case store.TypeString:
		err = h.k.SetStringValue(name, v.String)
	case store.TypeExpandString:
		err = h.k.SetExpandStringValue(name, v.String)
	case store.TypeMultiString:
		err = h.k.SetStringsValue(name, v.Strings)
	case store.TypeDWord:
		err = h.k.SetDWordValue(name, uint32(v.Integer))
	case store.TypeQWord:
		err = h.k.SetQWordValue(name, v.Integer)
	case store.TypeBinary:
		err = h.k.SetBinaryValue(name, v.Binary)
	default:
		return fmt.Errorf("%w: %s", store.ErrInvalidType, v.Type)
	}
	return mapError(err)
}

func (h *handle) DeleteField(name string) error {
	return mapError(h.k.DeleteValue(name))
}

func (h *handle) Close() error {
	return h.k.Close()
}

package memstore

import "github.com/oakwood-commons/hivedit/internal/store"

const sessionEnv = `HKEY_LOCAL_MACHINE\SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

// NewDemo returns a backend seeded with environment-like keys, used by
// `--backend memory` sessions.
func NewDemo() *Backend {
	b := New()
	seed := []struct {
		path, name string
		v          store.Value
	}{
		{sessionEnv, "ComSpec", store.StringValue(store.TypeExpandString, `%SystemRoot%\system32\cmd.exe`)},
		{sessionEnv, "OS", store.StringValue(store.TypeString, "Windows_NT")},
		{sessionEnv, "Path", store.StringValue(store.TypeExpandString, `%SystemRoot%\system32;%SystemRoot%;%SystemRoot%\System32\Wbem`)},
		{sessionEnv, "PATHEXT", store.StringValue(store.TypeString, ".COM;.EXE;.BAT;.CMD;.VBS;.JS;.MSC")},
		{sessionEnv, "NUMBER_OF_PROCESSORS", store.StringValue(store.TypeString, "8")},
		{`HKEY_CURRENT_USER\Environment`, "TEMP", store.StringValue(store.TypeExpandString, `%USERPROFILE%\AppData\Local\Temp`)},
		{`HKEY_CURRENT_USER\Environment`, "TMP", store.StringValue(store.TypeExpandString, `%USERPROFILE%\AppData\Local\Temp`)},
		{`HKEY_CURRENT_USER\Volatile Environment`, "USERNAME", store.StringValue(store.TypeString, "demo")},
		{`HKEY_CURRENT_USER\Software\hivedit`, "Counter", store.Value{Type: store.TypeDWord, Integer: 42}},
		{`HKEY_CURRENT_USER\Software\hivedit`, "Blob", store.Value{Type: store.TypeBinary, Binary: []byte{0xde, 0xad, 0xbe, 0xef}}},
		{`HKEY_CLASSES_ROOT\.txt`, "", store.StringValue(store.TypeString, "txtfile")},
		{`HKEY_CLASSES_ROOT\.py`, "", store.StringValue(store.TypeString, "Python.File")},
	}
	for _, s := range seed {
		_ = b.Set(s.path, s.name, s.v)
	}
	_ = b.CreateKey(`HKEY_LOCAL_MACHINE\SOFTWARE\Classes`)
	_ = b.CreateKey(`HKEY_USERS\.DEFAULT`)
	return b
}

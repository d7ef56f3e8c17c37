package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Access is a permission mask used when opening a key.
type Access uint8

const (
	AccessRead Access = 1 << iota
	AccessWrite
	AccessAll = AccessRead | AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessAll:
		return "all"
	default:
		return "access(" + strconv.Itoa(int(a)) + ")"
	}
}

// FieldType is the registry value type tag, with registry numbering.
type FieldType uint32

const (
	TypeNone             FieldType = 0
	TypeString           FieldType = 1
	TypeExpandString     FieldType = 2
	TypeBinary           FieldType = 3
	TypeDWord            FieldType = 4
	TypeDWordBigEndian   FieldType = 5
	TypeLink             FieldType = 6
	TypeMultiString      FieldType = 7
	TypeResourceList     FieldType = 8
	TypeFullResourceDesc FieldType = 9
	TypeResourceReqList  FieldType = 10
	TypeQWord            FieldType = 11
)

var typeNames = map[FieldType]string{
	TypeNone:             "REG_NONE",
	TypeString:           "REG_SZ",
	TypeExpandString:     "REG_EXPAND_SZ",
	TypeBinary:           "REG_BINARY",
	TypeDWord:            "REG_DWORD",
	TypeDWordBigEndian:   "REG_DWORD_BIG_ENDIAN",
	TypeLink:             "REG_LINK",
	TypeMultiString:      "REG_MULTI_SZ",
	TypeResourceList:     "REG_RESOURCE_LIST",
	TypeFullResourceDesc: "REG_FULL_RESOURCE_DESCRIPTOR",
	TypeResourceReqList:  "REG_RESOURCE_REQUIREMENTS_LIST",
	TypeQWord:            "REG_QWORD",
}

func (t FieldType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "REG_" + strconv.FormatUint(uint64(t), 10)
}

// IsString reports whether the type holds a single string.
func (t FieldType) IsString() bool {
	return t == TypeString || t == TypeExpandString
}

// ParseFieldType accepts a registry type name (REG_SZ, sz, expand_sz) or its number.
func ParseFieldType(s string) (FieldType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return FieldType(n), nil
	}
	want := strings.ToUpper(s)
	if !strings.HasPrefix(want, "REG_") {
		want = "REG_" + want
	}
	for t, name := range typeNames {
		if name == want {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Value is the data of a field. Which member is meaningful depends on Type.
type Value struct {
	Type    FieldType
	String  string
	Strings []string
	Integer uint64
	Binary  []byte
}

// StringValue builds a value of a string type.
func StringValue(t FieldType, s string) Value {
	return Value{Type: t, String: s}
}

// Text renders the value for display.
func (v Value) Text() string {
	switch v.Type {
	case TypeString, TypeExpandString, TypeLink:
		return v.String
	case TypeMultiString:
		return strings.Join(v.Strings, "\n")
	case TypeDWord, TypeDWordBigEndian, TypeQWord:
		return "0x" + strconv.FormatUint(v.Integer, 16) + " (" + strconv.FormatUint(v.Integer, 10) + ")"
	default:
		if len(v.Binary) == 0 {
			return ""
		}
		var b strings.Builder
		for i, c := range v.Binary {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02x", c)
		}
		return b.String()
	}
}

// Validate checks that the value can be written with its type.
func (v Value) Validate() error {
	switch v.Type {
	case TypeDWord, TypeDWordBigEndian:
		if v.Integer > 0xffffffff {
			return fmt.Errorf("%w: %s value overflows 32 bits", ErrInvalidType, v.Type)
		}
	case TypeMultiString:
		for _, s := range v.Strings {
			if s == "" {
				return fmt.Errorf("%w: %s cannot hold empty strings", ErrInvalidType, v.Type)
			}
		}
	}
	return nil
}

// Package settings provides build metadata, runtime configuration, and
// context helpers used across the hivedit CLI and its internal packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "hivedit"

// EnvPrefix is the prefix of environment variables that override settings
// (HIVEDIT_BACKEND, HIVEDIT_BASE_DIR, ...).
const EnvPrefix = "HIVEDIT"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Backend names the store implementation a run talks to.
type Backend string

const (
	// BackendAuto picks the native registry on Windows and the disk store elsewhere.
	BackendAuto Backend = "auto"
	// BackendRegistry is the Windows system registry.
	BackendRegistry Backend = "registry"
	// BackendDisk is the portable diskv-backed store.
	BackendDisk Backend = "disk"
	// BackendMemory is a throwaway in-memory store seeded with sample keys.
	BackendMemory Backend = "memory"
)

// Run holds configuration settings for a single execution of the application.
// It includes options for logging, store selection, output formatting,
// and the optional configuration documents that customise the editor.
type Run struct {
	MinLogLevel           int8
	NoColor               bool
	Backend               Backend
	BaseDir               string
	LogFile               string
	MenuConfigPath        string
	UIConfigPath          string
	FieldEditorConfigPath string
	StartPath             string
}

// NewCliParams initializes and returns a pointer to a Run struct with default CLI parameters.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		NoColor:     false,
		Backend:     BackendAuto,
	}
}

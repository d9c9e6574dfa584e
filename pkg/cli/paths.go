package cli

import (
	"os"
	"path/filepath"
)

// EnvDataDir overrides the data directory when set.
const EnvDataDir = "MUSE_DATA_DIR"

// EnvConfigDir overrides the base directory when set.
const EnvConfigDir = "MUSE_CONFIG_DIR"

// Paths provides access to the muse directory layout.
//
// Everything lives under os.UserConfigDir()/muse by default, or under
// MUSE_CONFIG_DIR when set:
//
//	muse/
//	├── config.yaml   # contexts (see Config)
//	├── data/         # persisted agent state (badger)
//	└── exports/      # default export target for reports and snapshots
type Paths struct {
	// BaseDir is the root muse directory
	BaseDir string
}

// NewPaths resolves the muse directory layout
func NewPaths() (*Paths, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return &Paths{BaseDir: dir}, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Paths{BaseDir: filepath.Join(base, DefaultAppDir)}, nil
}

// ConfigFile returns the config file path
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, DefaultConfigFile)
}

// DataDir returns the data directory.
// The MUSE_DATA_DIR environment variable takes precedence.
func (p *Paths) DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return filepath.Join(p.BaseDir, "data")
}

// ExportsDir returns the default export directory
func (p *Paths) ExportsDir() string {
	return filepath.Join(p.BaseDir, "exports")
}

// EnsureDataDir makes sure the data directory exists.
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0o755)
}

// EnsureExportsDir makes sure the default export directory exists.
func (p *Paths) EnsureExportsDir() error {
	return os.MkdirAll(p.ExportsDir(), 0o755)
}

// DataPath joins name onto the data directory.
func (p *Paths) DataPath(name string) string {
	return filepath.Join(p.DataDir(), name)
}

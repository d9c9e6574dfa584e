package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultAppDir names the directory under os.UserConfigDir().
	DefaultAppDir = "muse"
	// DefaultConfigFile names the config file within it.
	DefaultConfigFile = "config.yaml"
)

// Config is the on-disk CLI configuration: every named context plus
// which one is current.
type Config struct {
	CurrentContext string              `yaml:"current_context,omitempty"`
	Contexts       map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context bundles the settings for one muse setup.
type Context struct {
	Name string `yaml:"name"`

	// DataDir holds persisted agent state. Empty uses the default
	// location; MUSE_DATA_DIR overrides both.
	DataDir string `yaml:"data_dir,omitempty"`

	// RulesFile points to a custom classifier rule file.
	RulesFile string `yaml:"rules_file,omitempty"`

	// CatalogFile points to a tool catalog for task analysis.
	CatalogFile string `yaml:"catalog_file,omitempty"`

	// Depth is the default reasoning depth, 1 to 5.
	Depth int `yaml:"depth,omitempty"`

	// NoCriticalThinking disables the evaluation step of the chain.
	NoCriticalThinking bool `yaml:"no_critical_thinking,omitempty"`

	// Output is the default output format for structured commands.
	Output string `yaml:"output,omitempty"`

	// Render enables terminal styling of reports.
	Render bool `yaml:"render,omitempty"`

	// Export configures where history export writes.
	Export *ExportTarget `yaml:"export,omitempty"`

	// Extra stores ad-hoc settings.
	Extra map[string]string `yaml:"extra,omitempty"`
}

// ExportTarget selects the destination for exported reports and
// snapshots. Dir and Bucket are mutually exclusive; Dir wins when both
// are set.
type ExportTarget struct {
	// Dir exports to a local directory.
	Dir string `yaml:"dir,omitempty"`

	// Bucket exports to an S3 bucket, credentials from the environment.
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is prepended to object keys within the bucket.
	Prefix string `yaml:"prefix,omitempty"`

	// Region overrides the AWS region for the bucket.
	Region string `yaml:"region,omitempty"`
}

// LoadConfig reads the config at the default location, creating an
// empty one on first run.
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath reads the config at customPath, or the default
// location when customPath is empty.
func LoadConfigWithPath(customPath string) (*Config, error) {
	path := customPath
	if path == "" {
		p, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
		path = p.ConfigFile()
	}

	cfg := &Config{Contexts: map[string]*Context{}, configPath: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, cfg.Save()
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = map[string]*Context{}
	}
	return cfg, nil
}

// Save writes the config back to disk, creating the directory on
// first use.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(c.configPath, data, 0o600)
}

// Path returns the config file path.
func (c *Config) Path() string { return c.configPath }

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return filepath.Dir(c.configPath) }

// GetContext looks up a context by name.
func (c *Config) GetContext(name string) (*Context, error) {
	if ctx, ok := c.Contexts[name]; ok {
		return ctx, nil
	}
	return nil, fmt.Errorf("context %q not found", name)
}

// GetCurrentContext returns the context UseContext selected.
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, errors.New("no context selected")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the named context, or the current one when
// name is empty.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// AddContext stores ctx under name and saves.
func (c *Config) AddContext(name string, ctx *Context) error {
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes the named context and saves. Deleting the
// current context leaves none selected.
func (c *Config) DeleteContext(name string) error {
	if _, err := c.GetContext(name); err != nil {
		return err
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext makes the named context current and saves.
func (c *Config) UseContext(name string) error {
	if _, err := c.GetContext(name); err != nil {
		return err
	}
	c.CurrentContext = name
	return c.Save()
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	return slices.Sorted(maps.Keys(c.Contexts))
}

// GetExtra reads an ad-hoc setting; missing keys read as "".
func (ctx *Context) GetExtra(key string) string {
	return ctx.Extra[key]
}

// SetExtra records an ad-hoc setting on the context.
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = map[string]string{}
	}
	ctx.Extra[key] = value
}

package config

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr      = ":8000"
	DefaultLevelsDir = "levels"
	DefaultAssetsDir = "assets"
	DefaultMaxCells  = 1 << 24
	DefaultWorkers   = 4
)

type Config struct {
	Addr      string `yaml:"addr"`
	LevelsDir string `yaml:"levels_dir"`
	AssetsDir string `yaml:"assets_dir"`
	Encoding  string `yaml:"encoding"`
	MaxCells  int    `yaml:"max_cells"`
	Workers   int    `yaml:"workers"`
	// pointer to tell "watch: false" from absent
	Watch *bool `yaml:"watch"`
}

var maxCells = DefaultMaxCells

func GetMaxCells() int {
	return maxCells
}

func SetMaxCells(n int) {
	if n <= 0 {
		n = DefaultMaxCells
	}
	maxCells = n
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML config. An empty path gives the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read config %q", path)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "Failed to unmarshal config")
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LevelsDir == "" {
		c.LevelsDir = DefaultLevelsDir
	}
	if c.AssetsDir == "" {
		c.AssetsDir = DefaultAssetsDir
	}
	if c.Encoding == "" {
		c.Encoding = UTF8
	}
	if c.MaxCells == 0 {
		c.MaxCells = DefaultMaxCells
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Watch == nil {
		watch := true
		c.Watch = &watch
	}
}

func (c *Config) Validate() error {
	if _, err := FindEncoding(c.Encoding); err != nil {
		return err
	}
	if c.MaxCells < 0 {
		return errors.Errorf("max_cells must be positive, got %d", c.MaxCells)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// Apply installs the process wide settings used by the pack loaders.
func (c *Config) Apply() error {
	if err := SetEncoding(c.Encoding); err != nil {
		return err
	}
	SetMaxCells(c.MaxCells)
	return nil
}

func (c *Config) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrapf(err, "Failed to marshal config")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "Failed to close yaml encoder")
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0644), "Cannot write config %q", path)
}

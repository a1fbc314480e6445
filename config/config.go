// Package config loads .portgraph.yaml.
//
// Every key is optional. Missing keys keep the values of Default, which
// match a stock Haiku installation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory when no path is given.
const FileName = ".portgraph.yaml"

const (
	defaultResolveTimeout = "30s"
	defaultStageTimeout   = "2m"
)

// Tools names the external programs a run invokes.
type Tools struct {
	Pkgman  string `yaml:"pkgman,omitempty"`
	Package string `yaml:"package,omitempty"`
}

// Config models .portgraph.yaml.
type Config struct {
	// Tree is the root of the ports tree.
	Tree string `yaml:"tree"`
	// Repository holds the .PackageInfo descriptors of all buildable
	// packages. Empty means <tree>/repository.
	Repository          string   `yaml:"repository,omitempty"`
	SystemPackageDirs   []string `yaml:"system_package_dirs"`
	SecondaryArchSuffix string   `yaml:"secondary_arch_suffix,omitempty"`
	Tools               Tools    `yaml:"tools"`
	// ResolveTimeout bounds one pkgman call, as a Go duration.
	ResolveTimeout string `yaml:"resolve_timeout"`
	// StageTimeout bounds one descriptor extraction or validation.
	StageTimeout    string `yaml:"stage_timeout"`
	StrictAmbiguity bool   `yaml:"strict_ambiguity"`
	Jobs            int    `yaml:"jobs"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Tree:              ".",
		SystemPackageDirs: []string{"/boot/system/packages", "/boot/common/packages"},
		Tools: Tools{
			Pkgman:  "/bin/pkgman",
			Package: "package",
		},
		ResolveTimeout: defaultResolveTimeout,
		StageTimeout:   defaultStageTimeout,
		Jobs:           runtime.NumCPU(),
	}
}

// Load reads the configuration at path on top of Default. An empty path
// looks for FileName in the working directory and falls back to Default
// when there is none. Relative paths in the file are taken relative to the
// file's directory.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML on top of Default. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	c.Tree = resolve(c.Tree)
	c.Repository = resolve(c.Repository)
	for i, dir := range c.SystemPackageDirs {
		c.SystemPackageDirs[i] = resolve(dir)
	}
}

// RepositoryPath returns Repository, or <tree>/repository when unset.
func (c Config) RepositoryPath() string {
	if c.Repository != "" {
		return c.Repository
	}
	return filepath.Join(c.Tree, "repository")
}

// ResolveTimeoutDuration parses ResolveTimeout.
func (c Config) ResolveTimeoutDuration() time.Duration {
	return parseDuration(c.ResolveTimeout, defaultResolveTimeout)
}

// StageTimeoutDuration parses StageTimeout.
func (c Config) StageTimeoutDuration() time.Duration {
	return parseDuration(c.StageTimeout, defaultStageTimeout)
}

func parseDuration(value, fallback string) time.Duration {
	if value == "" {
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Tree == "" {
		errs = append(errs, errors.New("tree path is required"))
	}
	if c.Tools.Pkgman == "" {
		errs = append(errs, errors.New("tools.pkgman is required"))
	}
	if c.Tools.Package == "" {
		errs = append(errs, errors.New("tools.package is required"))
	}
	for _, setting := range []struct{ key, value string }{
		{key: "resolve_timeout", value: c.ResolveTimeout},
		{key: "stage_timeout", value: c.StageTimeout},
	} {
		d, err := time.ParseDuration(setting.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", setting.key, err))
			continue
		}
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", setting.key, setting.value))
		}
	}
	if c.Jobs <= 0 {
		errs = append(errs, fmt.Errorf("jobs must be positive, got %d", c.Jobs))
	}

	return errors.Join(errs...)
}

// Package config loads shaderlink.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/richinsley/goshaderlink/program"
	"github.com/richinsley/goshaderlink/shadertype"
)

const FileName = "shaderlink.toml"

// Output formats understood by the CLI.
var Formats = []string{"pretty", "json", "msgpack"}

type Config struct {
	// Path is the file the configuration was read from; Root is its
	// directory. Relative paths in the file are resolved against Root.
	Path string `toml:"-"`
	Root string `toml:"-"`

	Program     ProgramConfig     `toml:"program"`
	Stages      map[string]string `toml:"stages"`
	EntryPoints map[string]string `toml:"entry_points"`
	Translator  TranslatorConfig  `toml:"translator"`
	WGSL        WGSLConfig        `toml:"wgsl"`
	Limits      program.Limits    `toml:"limits"`
	Output      OutputConfig      `toml:"output"`
}

type ProgramConfig struct {
	Name string `toml:"name"`
}

type TranslatorConfig struct {
	Wasm   string `toml:"wasm"`
	Spec   string `toml:"spec"`
	Output string `toml:"output"`
}

type WGSLConfig struct {
	GroupStride int `toml:"group_stride"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// Default is the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Translator: TranslatorConfig{Spec: "gles3", Output: "essl"},
		Output:     OutputConfig{Format: "pretty"},
	}
}

// Find walks up from startDir looking for shaderlink.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the configuration for startDir. It returns the
// defaults and false when there is none.
func Discover(startDir string) (*Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)

	if meta.IsDefined("stages") {
		for name, src := range cfg.Stages {
			if _, err := shadertype.ParseType(name); err != nil {
				return nil, fmt.Errorf("%s: [stages]: %w", path, err)
			}
			if strings.TrimSpace(src) == "" {
				return nil, fmt.Errorf("%s: [stages].%s is empty", path, name)
			}
		}
	}
	for name := range cfg.EntryPoints {
		if _, err := shadertype.ParseType(name); err != nil {
			return nil, fmt.Errorf("%s: [entry_points]: %w", path, err)
		}
	}
	if meta.IsDefined("output", "format") && !slices.Contains(Formats, cfg.Output.Format) {
		return nil, fmt.Errorf("%s: [output].format must be one of %s", path, strings.Join(Formats, ", "))
	}
	if meta.IsDefined("translator", "spec") && strings.TrimSpace(cfg.Translator.Spec) == "" {
		return nil, fmt.Errorf("%s: [translator].spec is empty", path)
	}
	if cfg.WGSL.GroupStride < 0 {
		return nil, fmt.Errorf("%s: [wgsl].group_stride must not be negative", path)
	}
	for _, l := range []int{cfg.Limits.MaxCombinedUniformBlocks, cfg.Limits.MaxCombinedShaderStorageBlocks, cfg.Limits.MaxAtomicCounterBuffers} {
		if l < 0 {
			return nil, fmt.Errorf("%s: [limits] must not be negative", path)
		}
	}
	return cfg, nil
}

// Resolve makes p absolute relative to Root.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// StageSources returns the configured source file of each stage.
func (c *Config) StageSources() (map[shadertype.Type]string, error) {
	out := make(map[shadertype.Type]string, len(c.Stages))
	for name, src := range c.Stages {
		stage, err := shadertype.ParseType(name)
		if err != nil {
			return nil, err
		}
		out[stage] = c.Resolve(src)
	}
	return out, nil
}

// EntryPoint returns the configured entry point of stage, or "".
func (c *Config) EntryPoint(stage shadertype.Type) string {
	for name, ep := range c.EntryPoints {
		if t, err := shadertype.ParseType(name); err == nil && t == stage {
			return ep
		}
	}
	return ""
}

package syncversion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultConfigFile is the config file looked up in the project root.
const DefaultConfigFile = ".syncversion.yml"

// Platforms lists the platform names accepted by Config.Targets.
var Platforms = []string{"ios", "android"}

// Config locates the files to keep in sync. Paths are relative to the project
// root unless absolute.
type Config struct {
	Package   string        `yaml:"package"`
	MaxBuilds int           `yaml:"max_builds"`
	IOS       IOSConfig     `yaml:"ios"`
	Android   AndroidConfig `yaml:"android"`
}

type IOSConfig struct {
	Plists []string `yaml:"plists"`
}

type AndroidConfig struct {
	Gradle   string `yaml:"gradle"`
	Manifest string `yaml:"manifest"`
}

// DefaultConfig returns the React Native project layout. Info.plist files are
// discovered under ios/*/, skipping test targets, and build.gradle.kts is
// preferred over build.gradle only when it is the one that exists.
func DefaultConfig(root string) *Config {
	cfg := &Config{
		Package:   "package.json",
		MaxBuilds: DefaultMaxBuilds,
		Android: AndroidConfig{
			Gradle:   filepath.Join("android", "app", "build.gradle"),
			Manifest: filepath.Join("android", "app", "src", "main", "AndroidManifest.xml"),
		},
	}
	if _, err := os.Stat(filepath.Join(root, cfg.Android.Gradle)); err != nil {
		if _, err := os.Stat(filepath.Join(root, cfg.Android.Gradle+".kts")); err == nil {
			cfg.Android.Gradle += ".kts"
		}
	}

	matches, _ := filepath.Glob(filepath.Join(root, "ios", "*", "Info.plist"))
	for _, m := range matches {
		dir := filepath.Base(filepath.Dir(m))
		if strings.HasSuffix(dir, "Tests") || strings.HasSuffix(dir, ".xcodeproj") {
			continue
		}
		rel, err := filepath.Rel(root, m)
		if err != nil {
			rel = m
		}
		cfg.IOS.Plists = append(cfg.IOS.Plists, rel)
	}
	return cfg
}

// LoadConfig reads the config file at path, resolved against root. An empty
// path means DefaultConfigFile. A missing file is not an error: the defaults
// are returned. Fields the file leaves empty keep their default values.
func LoadConfig(root, path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	def := DefaultConfig(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Package == "" {
		cfg.Package = def.Package
	}
	if cfg.MaxBuilds <= 0 {
		cfg.MaxBuilds = def.MaxBuilds
	}
	if len(cfg.IOS.Plists) == 0 {
		cfg.IOS.Plists = def.IOS.Plists
	}
	if cfg.Android.Gradle == "" {
		cfg.Android.Gradle = def.Android.Gradle
	}
	if cfg.Android.Manifest == "" {
		cfg.Android.Manifest = def.Android.Manifest
	}
	return &cfg, nil
}

// WriteConfig serializes cfg as YAML to path.
func WriteConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Targets returns the targets of the selected platforms with their paths
// resolved against root. No platforms selects all of them.
func (c *Config) Targets(root string, platforms []string) ([]Target, error) {
	if len(platforms) == 0 {
		platforms = Platforms
	}
	for _, p := range platforms {
		if !slices.Contains(Platforms, p) {
			return nil, fmt.Errorf("unknown platform %q (want one of %s)", p, strings.Join(Platforms, ", "))
		}
	}

	var targets []Target
	if slices.Contains(platforms, "ios") {
		for _, p := range c.IOS.Plists {
			targets = append(targets, NewPlistTarget(resolve(root, p)))
		}
	}
	if slices.Contains(platforms, "android") {
		if c.Android.Gradle != "" {
			targets = append(targets, NewGradleTarget(resolve(root, c.Android.Gradle)))
		}
		if c.Android.Manifest != "" {
			targets = append(targets, NewManifestTarget(resolve(root, c.Android.Manifest)))
		}
	}
	return targets, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

package converter

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// ConfigFileName is looked up in the project root when no config is given.
const ConfigFileName = "vrmimporter.yaml"

type Config struct {
	NormalMapKeywords []string `yaml:"normalMapKeywords"`

	Archive struct {
		TextureDir  string `yaml:"textureDir"`
		MaterialDir string `yaml:"materialDir"`
		MeshDir     string `yaml:"meshDir"`
	} `yaml:"archive"`

	ImportOutput string `yaml:"importOutput"`
	Verbose      bool   `yaml:"verbose"`
}

func DefaultConfig() *Config {
	conf := &Config{
		NormalMapKeywords: []string{"normal"},
		ImportOutput:      "vrm10.vrm",
	}
	conf.Archive.TextureDir = "Textures"
	conf.Archive.MaterialDir = "Materials"
	conf.Archive.MeshDir = "Meshes"
	return conf
}

// LoadConfig reads a config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return conf, nil
}

// FindConfig loads path, or ConfigFileName in projectRoot when path is empty.
// Defaults are returned when neither exists.
func FindConfig(path, projectRoot string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	path = filepath.Join(projectRoot, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func (c *Config) TextureConvertOption() *TextureConvertOption {
	return &TextureConvertOption{
		NormalMapKeywords: c.NormalMapKeywords,
		Verbose:           c.Verbose,
	}
}

func (c *Config) ArchiveOption() *ArchiveOption {
	return &ArchiveOption{
		TextureDir:  c.Archive.TextureDir,
		MaterialDir: c.Archive.MaterialDir,
		MeshDir:     c.Archive.MeshDir,
	}
}

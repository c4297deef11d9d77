package unity

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const MetaFileFormatVersion = 2

type MetaFile struct {
	FileFormatVersion int    `yaml:"fileFormatVersion"`
	GUID              string `yaml:"guid"`

	NativeFormatImporter *NativeFormatImporter `yaml:"NativeFormatImporter,omitempty"`
	TextureImporter      *TextureImporter      `yaml:"TextureImporter,omitempty"`
	ModelImporter        interface{}           `yaml:"ModelImporter,omitempty"`
	DefaultImporter      interface{}           `yaml:"DefaultImporter,omitempty"`
}

type NativeFormatImporter struct {
	ExternalObjects  map[string]interface{} `yaml:"externalObjects"`
	MainObjectFileID int64                  `yaml:"mainObjectFileID"`
	UserData         string                 `yaml:"userData"`
	AssetBundleName  string                 `yaml:"assetBundleName"`
}

type TextureType int

const (
	TextureTypeDefault   TextureType = 0
	TextureTypeNormalMap TextureType = 1
)

type TextureShape int

const TextureShape2D TextureShape = 1

type TextureImporter struct {
	SerializedVersion int `yaml:"serializedVersion"`
	Mipmaps           struct {
		EnableMipMap int `yaml:"enableMipMap"`
	} `yaml:"mipmaps"`
	IsReadable   int          `yaml:"isReadable"`
	TextureType  TextureType  `yaml:"textureType"`
	TextureShape TextureShape `yaml:"textureShape"`
}

// NewTextureImporter returns the reset configuration: 2D, readable, no mipmaps.
func NewTextureImporter(normalMap bool) *TextureImporter {
	ti := &TextureImporter{
		SerializedVersion: 11,
		IsReadable:        1,
		TextureType:       TextureTypeDefault,
		TextureShape:      TextureShape2D,
	}
	if normalMap {
		ti.TextureType = TextureTypeNormalMap
	}
	return ti
}

func MetaPath(path string) string {
	return path + ".meta"
}

// NewGUID returns a random GUID in Unity's 32 hex digits form.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func ReadMetaFile(path string) (*MetaFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta MetaFile
	if err := yaml.Unmarshal(b, &meta); err != nil {
		return nil, errors.Wrapf(err, "invalid meta file %s", path)
	}
	return &meta, nil
}

func WriteMetaFile(path string, meta *MetaFile) error {
	if meta.FileFormatVersion == 0 {
		meta.FileFormatVersion = MetaFileFormatVersion
	}
	b, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// TruncateMetaFile keeps the first n lines of a meta file.
// Importer settings are dropped, only version and guid survive with n = 2.
func TruncateMetaFile(path string, n int) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for len(lines) < n && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

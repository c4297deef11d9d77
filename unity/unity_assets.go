package unity

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type Assets interface {
	GetAsset(guid string) *Asset
	GetAssetByPath(assetPath string) *Asset
	GetAllAssets() []*Asset
	Open(assetPath string) (fs.File, error)
	Close() error
}

// AssetDatabase is a Unity project on disk. Asset paths are slash separated
// and relative to the project root ("Assets/Textures/skin.png").
//
// It is not safe for concurrent use.
type AssetDatabase struct {
	Root         string
	Assets       map[string]*Asset
	AssetsByPath map[string]*Asset

	materials map[string]*Material
}

// OpenProject scans the Assets dir of a project.
func OpenProject(root string) (*AssetDatabase, error) {
	db := &AssetDatabase{
		Root:         root,
		Assets:       map[string]*Asset{},
		AssetsByPath: map[string]*Asset{},
		materials:    map[string]*Material{},
	}
	assetsDir := filepath.Join(root, "Assets")
	if st, err := os.Stat(assetsDir); err != nil {
		return nil, errors.Wrap(err, "not a unity project")
	} else if !st.IsDir() {
		return nil, errors.Errorf("not a unity project: %s", root)
	}
	err := filepath.Walk(assetsDir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".meta") {
			return nil
		}
		meta, err := ReadMetaFile(p)
		if err != nil {
			return err
		}
		if meta.GUID == "" {
			return nil
		}
		rel, err := filepath.Rel(root, strings.TrimSuffix(p, ".meta"))
		if err != nil {
			return err
		}
		db.addAsset(&Asset{GUID: meta.GUID, Path: filepath.ToSlash(rel)})
		return nil
	})
	return db, err
}

func (db *AssetDatabase) addAsset(asset *Asset) {
	db.Assets[asset.GUID] = asset
	db.AssetsByPath[asset.Path] = asset
}

// FullPath converts an asset path to a file system path.
func (db *AssetDatabase) FullPath(assetPath string) string {
	return filepath.Join(db.Root, filepath.FromSlash(assetPath))
}

func (db *AssetDatabase) GetAsset(guid string) *Asset {
	return db.Assets[guid]
}

func (db *AssetDatabase) GetAssetByPath(assetPath string) *Asset {
	return db.AssetsByPath[assetPath]
}

func (db *AssetDatabase) GetAllAssets() []*Asset {
	var assets []*Asset
	for _, a := range db.Assets {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return assets
}

// FindAssets returns assets whose path matches pattern (path.Match syntax).
// Patterns without a slash are matched against the file name.
func (db *AssetDatabase) FindAssets(pattern string) ([]*Asset, error) {
	var found []*Asset
	for _, a := range db.GetAllAssets() {
		target := a.Path
		if !strings.Contains(pattern, "/") {
			target = path.Base(a.Path)
		}
		ok, err := path.Match(pattern, target)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, a)
		}
	}
	return found, nil
}

func (db *AssetDatabase) IsFolder(assetPath string) bool {
	st, err := os.Stat(db.FullPath(assetPath))
	return err == nil && st.IsDir()
}

func (db *AssetDatabase) Open(assetPath string) (fs.File, error) {
	return os.Open(db.FullPath(assetPath))
}

func (db *AssetDatabase) Close() error {
	return nil
}

func (db *AssetDatabase) ReadBytes(assetPath string) ([]byte, error) {
	return os.ReadFile(db.FullPath(assetPath))
}

func (db *AssetDatabase) WriteBytes(assetPath string, data []byte) error {
	p := db.FullPath(assetPath)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// CreateAsset writes a new asset with a fresh meta file.
// mainObjectFileID selects a NativeFormatImporter, 0 lets the extension decide.
func (db *AssetDatabase) CreateAsset(assetPath string, data []byte, mainObjectFileID int64) (*Asset, error) {
	if a := db.GetAssetByPath(assetPath); a != nil {
		return a, ErrAssetExists
	}
	if _, err := os.Stat(db.FullPath(assetPath)); err == nil {
		return nil, errors.Wrapf(ErrAssetExists, "%s has no meta file", assetPath)
	}
	if err := db.WriteBytes(assetPath, data); err != nil {
		return nil, err
	}
	meta := &MetaFile{GUID: NewGUID()}
	if mainObjectFileID != 0 {
		meta.NativeFormatImporter = &NativeFormatImporter{
			ExternalObjects:  map[string]interface{}{},
			MainObjectFileID: mainObjectFileID,
		}
	} else {
		switch strings.ToLower(path.Ext(assetPath)) {
		case ".glb", ".gltf", ".vrm", ".fbx":
			meta.ModelImporter = map[string]interface{}{"serializedVersion": 19301}
		default:
			meta.DefaultImporter = map[string]interface{}{"externalObjects": map[string]interface{}{}}
		}
	}
	if err := WriteMetaFile(MetaPath(db.FullPath(assetPath)), meta); err != nil {
		return nil, err
	}
	asset := &Asset{GUID: meta.GUID, Path: assetPath}
	db.addAsset(asset)
	return asset, nil
}

// CheckMove reports the error Move would fail with, without touching the files.
func (db *AssetDatabase) CheckMove(oldPath, newPath string) error {
	asset := db.GetAssetByPath(oldPath)
	if asset == nil {
		return errors.Wrap(ErrAssetNotFound, oldPath)
	}
	if oldPath == newPath {
		return nil
	}
	if _, err := os.Stat(db.FullPath(newPath)); err == nil {
		return errors.Wrap(ErrAssetExists, newPath)
	}
	for _, m := range db.loadedMaterials() {
		for _, slot := range m.TextureSlots() {
			if ref := m.GetTexture(slot); ref != nil && ref.GUID == asset.GUID {
				return errors.Wrapf(ErrAssetReferenced, "%s: %s.%s", oldPath, m.Name, slot)
			}
		}
	}
	return nil
}

// Move renames an asset and its meta file. The GUID is kept.
// Moving an asset that a loaded material still references is refused.
func (db *AssetDatabase) Move(oldPath, newPath string) error {
	if err := db.CheckMove(oldPath, newPath); err != nil || oldPath == newPath {
		return err
	}
	asset := db.GetAssetByPath(oldPath)
	if err := os.Rename(db.FullPath(oldPath), db.FullPath(newPath)); err != nil {
		return err
	}
	if err := os.Rename(MetaPath(db.FullPath(oldPath)), MetaPath(db.FullPath(newPath))); err != nil {
		return err
	}
	delete(db.AssetsByPath, oldPath)
	asset.Path = newPath
	db.AssetsByPath[newPath] = asset
	return nil
}

// ResetMeta drops importer settings, keeping the version and guid lines.
func (db *AssetDatabase) ResetMeta(assetPath string) error {
	return TruncateMetaFile(MetaPath(db.FullPath(assetPath)), 2)
}

func (db *AssetDatabase) loadedMaterials() []*Material {
	var mats []*Material
	for _, m := range db.materials {
		mats = append(mats, m)
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].Asset.Path < mats[j].Asset.Path })
	return mats
}

// LoadMaterial loads a .mat asset. The same instance is returned while the database is open.
func (db *AssetDatabase) LoadMaterial(assetPath string) (*Material, error) {
	asset := db.GetAssetByPath(assetPath)
	if asset == nil {
		return nil, errors.Wrap(ErrAssetNotFound, assetPath)
	}
	return db.loadMaterial(asset)
}

func (db *AssetDatabase) LoadMaterialByGUID(guid string) (*Material, error) {
	asset := db.GetAsset(guid)
	if asset == nil {
		return nil, errors.Wrapf(ErrAssetNotFound, "material %s", guid)
	}
	return db.loadMaterial(asset)
}

func (db *AssetDatabase) loadMaterial(asset *Asset) (*Material, error) {
	if m, ok := db.materials[asset.GUID]; ok {
		return m, nil
	}
	b, err := db.ReadBytes(asset.Path)
	if err != nil {
		return nil, err
	}
	m, err := ParseMaterial(b)
	if err != nil {
		return nil, errors.Wrap(err, asset.Path)
	}
	m.Asset = asset
	db.materials[asset.GUID] = m
	return m, nil
}

func (db *AssetDatabase) SetDirty(m *Material) {
	m.dirty = true
}

// SaveAssets writes all dirty materials.
func (db *AssetDatabase) SaveAssets() error {
	for _, m := range db.loadedMaterials() {
		if !m.dirty {
			continue
		}
		b, err := m.Encode()
		if err != nil {
			return err
		}
		if err := db.WriteBytes(m.Asset.Path, b); err != nil {
			return errors.Wrapf(err, "save %s", m.Asset.Path)
		}
		m.dirty = false
	}
	return nil
}

// artifact is the import record of an asset kept under Library/Artifacts.
type artifact struct {
	GUID            string           `yaml:"guid"`
	Path            string           `yaml:"path"`
	Revision        int              `yaml:"revision"`
	TextureImporter *TextureImporter `yaml:"TextureImporter,omitempty"`
}

func (db *AssetDatabase) artifactPath(guid string) string {
	return filepath.Join(db.Root, "Library", "Artifacts", guid+".yaml")
}

func (db *AssetDatabase) readArtifact(guid string) (*artifact, error) {
	b, err := os.ReadFile(db.artifactPath(guid))
	if os.IsNotExist(err) {
		return &artifact{GUID: guid}, nil
	} else if err != nil {
		return nil, err
	}
	var a artifact
	if err := yaml.Unmarshal(b, &a); err != nil {
		return nil, errors.Wrapf(err, "artifact %s", guid)
	}
	return &a, nil
}

// Reimport reprocesses an asset with the given importer settings.
// Every handle loaded before the reimport is stale afterwards.
func (db *AssetDatabase) Reimport(assetPath string, importer *TextureImporter) error {
	asset := db.GetAssetByPath(assetPath)
	if asset == nil {
		return errors.Wrap(ErrAssetNotFound, assetPath)
	}
	if _, err := os.Stat(db.FullPath(assetPath)); err != nil {
		return err
	}
	a, err := db.readArtifact(asset.GUID)
	if err != nil {
		return err
	}
	a.Path = assetPath
	a.Revision++
	a.TextureImporter = importer
	b, err := yaml.Marshal(a)
	if err != nil {
		return err
	}
	p := db.artifactPath(asset.GUID)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, b, 0644)
}

var textureExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tga": true, ".psd": true,
	".bmp": true, ".gif": true, ".tif": true, ".tiff": true, ".webp": true,
}

// LoadTexture returns a new handle for the texture at assetPath.
func (db *AssetDatabase) LoadTexture(assetPath string) (*Texture, error) {
	asset := db.GetAssetByPath(assetPath)
	if asset == nil {
		return nil, errors.Wrap(ErrAssetNotFound, assetPath)
	}
	ext := strings.ToLower(path.Ext(assetPath))
	tex := &Texture{
		Name: strings.TrimSuffix(path.Base(assetPath), path.Ext(assetPath)),
		Path: assetPath,
		GUID: asset.GUID,
		Ref:  Ref{FileID: Texture2DFileID, GUID: asset.GUID, Type: RefTypeImported},
	}
	if ext == ".asset" {
		b, err := db.ReadBytes(assetPath)
		if err != nil {
			return nil, err
		}
		// named by file, not by m_Name
		if _, err := DecodeTexture2D(b); err != nil {
			return nil, errors.Wrap(err, assetPath)
		}
		tex.Ref.Type = RefTypeNative
	} else if !textureExtensions[ext] {
		return nil, errors.Wrap(ErrNotTexture, assetPath)
	}
	a, err := db.readArtifact(asset.GUID)
	if err != nil {
		return nil, err
	}
	tex.Revision = a.Revision
	tex.Importer = a.TextureImporter
	return tex, nil
}

// ResolveTexture loads the texture a material slot points to.
func (db *AssetDatabase) ResolveTexture(ref *Ref) (*Texture, error) {
	if !ref.IsValid() {
		return nil, nil
	}
	asset := db.GetAsset(ref.GUID)
	if asset == nil {
		return nil, errors.Wrapf(ErrAssetNotFound, "texture %s", ref.GUID)
	}
	return db.LoadTexture(asset.Path)
}

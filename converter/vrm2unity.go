package converter

import (
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/binzume/vrmimporter/gltfutil"
	"github.com/binzume/vrmimporter/texture"
	"github.com/binzume/vrmimporter/unity"
	"github.com/binzume/vrmimporter/vrm"
)

// ArchiveStore is the part of the asset database used to archive a model.
type ArchiveStore interface {
	IsFolder(assetPath string) bool
	GetAssetByPath(assetPath string) *unity.Asset
	CreateAsset(assetPath string, data []byte, mainObjectFileID int64) (*unity.Asset, error)
}

type ArchiveOption struct {
	TextureDir  string
	MaterialDir string
	MeshDir     string
}

// Archiver saves textures, materials and meshes of a model as persistent project assets.
type Archiver struct {
	options *ArchiveOption
	store   ArchiveStore
}

func NewArchiver(store ArchiveStore, options *ArchiveOption) *Archiver {
	if options == nil {
		options = DefaultConfig().ArchiveOption()
	}
	return &Archiver{options: options, store: store}
}

// subFolder returns archivePath/name when that folder exists, archivePath otherwise.
func (a *Archiver) subFolder(archivePath, name string) string {
	if name != "" {
		p := path.Join(archivePath, name)
		if a.store.IsFolder(p) {
			return p
		}
	}
	return archivePath
}

// Archive saves materials (with their textures) and meshes of doc under archivePath.
func (a *Archiver) Archive(doc *vrm.Document, archivePath string) error {
	archivePath = strings.TrimSuffix(path.Clean(archivePath), "/")
	if !a.store.IsFolder(archivePath) {
		return errors.Errorf("archive folder not found: %s", archivePath)
	}
	if err := a.SaveMaterials(doc,
		a.subFolder(archivePath, a.options.TextureDir),
		a.subFolder(archivePath, a.options.MaterialDir)); err != nil {
		return err
	}
	return a.SaveMeshes(doc, a.subFolder(archivePath, a.options.MeshDir))
}

type materialTexture struct {
	slot    string
	texture *uint32
}

func materialTextures(m *gltf.Material) []materialTexture {
	var textures []materialTexture
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			textures = append(textures, materialTexture{unity.SlotMainTex, gltf.Index(pbr.BaseColorTexture.Index)})
		}
		if pbr.MetallicRoughnessTexture != nil {
			textures = append(textures, materialTexture{unity.SlotMetallicGlossMap, gltf.Index(pbr.MetallicRoughnessTexture.Index)})
		}
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		textures = append(textures, materialTexture{unity.SlotBumpMap, m.NormalTexture.Index})
	}
	if m.EmissiveTexture != nil {
		textures = append(textures, materialTexture{unity.SlotEmissionMap, gltf.Index(m.EmissiveTexture.Index)})
	}
	if m.OcclusionTexture != nil && m.OcclusionTexture.Index != nil {
		textures = append(textures, materialTexture{unity.SlotOcclusionMap, m.OcclusionTexture.Index})
	}
	return textures
}

// standardRenderingMode maps a glTF alpha mode to _Mode of the Standard shader.
func standardRenderingMode(mode gltf.AlphaMode) float32 {
	switch mode {
	case gltf.AlphaMask:
		return 1 // Cutout
	case gltf.AlphaBlend:
		return 3 // Transparent
	}
	return 0 // Opaque
}

func assetFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return ""
}

// SaveMaterials writes every material of doc as a .mat and its textures as
// {material}{slot}.asset. Existing assets are kept.
func (a *Archiver) SaveMaterials(doc *vrm.Document, textureDir, materialDir string) error {
	gdoc := (*gltf.Document)(doc)
	for i, m := range gdoc.Materials {
		matName := unity.CleanMaterialName(m.Name)
		if matName == "" {
			matName = fmt.Sprintf("material%d", i)
		}
		matPath := path.Join(materialDir, assetFileName(matName)+".mat")
		if a.store.GetAssetByPath(matPath) != nil {
			log.Println("Skip persistent material:", matPath)
			continue
		}

		mat := unity.NewMaterial(matName, unity.StandardShader)
		col := [4]float32{1, 1, 1, 1}
		if m.PBRMetallicRoughness != nil {
			col = m.PBRMetallicRoughness.BaseColorFactorOrDefault()
		}
		mat.SetColor("_Color", unity.Color{R: col[0], G: col[1], B: col[2], A: col[3]})
		mat.SetFloat("_Mode", standardRenderingMode(m.AlphaMode))
		mat.SetFloat("_Cutoff", m.AlphaCutoffOrDefault())

		for _, t := range materialTextures(m) {
			ref, err := a.saveTexture(gdoc, *t.texture, matName+t.slot, textureDir)
			if err != nil {
				log.Printf("Texture archive failed: %s.%s: %v", matName, t.slot, err)
				continue
			}
			mat.SetTexture(t.slot, ref)
		}

		b, err := mat.Encode()
		if err != nil {
			return err
		}
		if _, err := a.store.CreateAsset(matPath, b, unity.MaterialFileID); err != nil {
			return errors.Wrap(err, matPath)
		}
		log.Println("Material:", matPath)
	}
	return nil
}

func (a *Archiver) saveTexture(doc *gltf.Document, index uint32, name, textureDir string) (*unity.Ref, error) {
	// the texture is found by its file name after conversion
	name = assetFileName(name)
	assetPath := path.Join(textureDir, name+".asset")
	if asset := a.store.GetAssetByPath(assetPath); asset != nil {
		return &unity.Ref{FileID: unity.Texture2DFileID, GUID: asset.GUID, Type: unity.RefTypeNative}, nil
	}
	data, mimeType, err := gltfutil.TextureImage(doc, index)
	if err != nil {
		return nil, err
	}
	img, err := texture.Decode(name+imageExt(mimeType), data)
	if err != nil {
		return nil, err
	}
	b, err := unity.NewTexture2D(name, img).Encode()
	if err != nil {
		return nil, err
	}
	asset, err := a.store.CreateAsset(assetPath, b, unity.Texture2DFileID)
	if err != nil {
		return nil, err
	}
	log.Println("Texture:", assetPath)
	return &unity.Ref{FileID: unity.Texture2DFileID, GUID: asset.GUID, Type: unity.RefTypeNative}, nil
}

// SaveMeshes writes every mesh of doc as a standalone .glb. Existing assets are kept.
func (a *Archiver) SaveMeshes(doc *vrm.Document, meshDir string) error {
	gdoc := (*gltf.Document)(doc)
	for i, m := range gdoc.Meshes {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh%d", i)
		}
		meshPath := path.Join(meshDir, assetFileName(name)+".glb")
		if a.store.GetAssetByPath(meshPath) != nil {
			log.Println("Skip persistent mesh:", meshPath)
			continue
		}
		mesh, err := gltfutil.ExtractMesh(gdoc, uint32(i))
		if err != nil {
			return err
		}
		b, err := gltfutil.EncodeBinary(mesh)
		if err != nil {
			return errors.Wrap(err, meshPath)
		}
		if _, err := a.store.CreateAsset(meshPath, b, 0); err != nil {
			return errors.Wrap(err, meshPath)
		}
		log.Println("Mesh:", meshPath)
	}
	return nil
}

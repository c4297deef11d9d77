package converter

import (
	"log"
	"path"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/binzume/vrmimporter/texture"
	"github.com/binzume/vrmimporter/unity"
)

var ErrCanceled = errors.New("canceled")

var spewConfig = &spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true, SortKeys: true}

const MissingMaterialsWarning = "Without materials to update, materials will lose texture references after conversion.\nAre you going to continue?"

// AssetStore is the part of the asset database used by the texture converter.
type AssetStore interface {
	ResolveTexture(ref *unity.Ref) (*unity.Texture, error)
	ReadBytes(assetPath string) ([]byte, error)
	WriteBytes(assetPath string, data []byte) error
	CheckMove(oldPath, newPath string) error
	Move(oldPath, newPath string) error
	ResetMeta(assetPath string) error
	Reimport(assetPath string, importer *unity.TextureImporter) error
	LoadTexture(assetPath string) (*unity.Texture, error)
	SetDirty(mat *unity.Material)
	SaveAssets() error
}

type Codec interface {
	EncodeToPNG(name string, data []byte) ([]byte, error)
}

type TextureConvertOption struct {
	NormalMapKeywords []string

	// Confirm is asked before converting without materials. nil proceeds.
	Confirm func(message string) bool

	Verbose bool
}

// TextureConverter rewrites textures as PNG and keeps material slots bound to them.
type TextureConverter struct {
	options *TextureConvertOption
	store   AssetStore
	codec   Codec
}

func NewTextureConverter(store AssetStore, codec Codec, options *TextureConvertOption) *TextureConverter {
	if options == nil {
		options = &TextureConvertOption{}
	}
	if options.NormalMapKeywords == nil {
		options.NormalMapKeywords = texture.DefaultNormalMapKeywords
	}
	if codec == nil {
		codec = texture.PNGCodec{}
	}
	return &TextureConverter{
		options: options,
		store:   store,
		codec:   codec,
	}
}

// Convert converts textures to PNG and rebinds every slot of materials that
// referenced one of them. Failures are logged per texture; nothing is rolled back.
// The only error returned is ErrCanceled.
func (c *TextureConverter) Convert(textures []*unity.Texture, materials []*unity.Material) error {
	if len(materials) == 0 && c.options.Confirm != nil && !c.options.Confirm(MissingMaterialsWarning) {
		return ErrCanceled
	}

	bindings := c.CollectBindings(materials)
	if c.options.Verbose {
		log.Print(spewConfig.Sdump(bindings.Summary()))
	}

	// clear texture references
	for _, tex := range textures {
		bs, _ := bindings.Get(tex.Name)
		for _, b := range bs {
			b.SetTexture(nil)
			c.store.SetDirty(b.Material)
		}
	}

	// overwrite image format
	var targetPaths []string
	for _, tex := range textures {
		newPath, err := c.reformat(tex)
		if err != nil {
			log.Printf("Convert failed: %s: %v", tex.Path, err)
			bs, _ := bindings.Get(tex.Name)
			for _, b := range bs {
				log.Printf("Left detached: %s.%s (was %s)", b.Material.Name, b.Slot, &b.Texture)
			}
			continue
		}
		targetPaths = append(targetPaths, newPath)
	}

	var imported []string
	for _, assetPath := range targetPaths {
		if err := c.store.Reimport(assetPath, c.importerFor(assetPath)); err != nil {
			log.Printf("Import failed: %s: %v", assetPath, err)
			continue
		}
		imported = append(imported, assetPath)
	}

	// assign new textures. handles loaded before the reimport are stale.
	for _, assetPath := range imported {
		tex, err := c.store.LoadTexture(assetPath)
		if err != nil || tex == nil {
			log.Printf("[Null] %s: %v", assetPath, err)
			continue
		}
		bs, ok := bindings.Get(tex.Name)
		if !ok {
			log.Printf("Failure to find texture reference: %s", tex)
			continue
		}
		for _, b := range bs {
			b.SetTexture(&tex.Ref)
			c.store.SetDirty(b.Material)
		}
		if c.options.Verbose {
			log.Printf("Rebound %s to %d slot(s)", tex, len(bs))
		}
	}

	if err := c.store.SaveAssets(); err != nil {
		log.Printf("Save failed: %v", err)
	}
	return nil
}

// CollectBindings records every bound texture slot of materials by texture name.
func (c *TextureConverter) CollectBindings(materials []*unity.Material) BindingMap {
	bindings := BindingMap{}
	for _, mat := range materials {
		for _, slot := range mat.TextureSlots() {
			ref := mat.GetTexture(slot)
			if ref == nil {
				log.Printf("Ignore null field [%s] %s", slot, mat.Name)
				continue
			}
			tex, err := c.store.ResolveTexture(ref)
			if err != nil || tex == nil {
				log.Printf("Ignore missing texture [%s] %s: %v", slot, mat.Name, err)
				continue
			}
			bindings.Add(tex.Name, &Binding{Material: mat, Slot: slot, Texture: *ref})
		}
	}
	return bindings
}

func pngPath(assetPath string) string {
	return strings.TrimSuffix(assetPath, path.Ext(assetPath)) + ".png"
}

// reformat writes tex as PNG in place, then moves it to the .png path.
// The source is left untouched when it cannot be moved.
func (c *TextureConverter) reformat(tex *unity.Texture) (string, error) {
	newPath := pngPath(tex.Path)
	if err := c.store.CheckMove(tex.Path, newPath); err != nil {
		return "", err
	}
	data, err := c.store.ReadBytes(tex.Path)
	if err != nil {
		return "", err
	}
	encoded, err := c.codec.EncodeToPNG(tex.Path, data)
	if err != nil {
		return "", err
	}
	if err := c.store.WriteBytes(tex.Path, encoded); err != nil {
		return "", err
	}
	if err := c.store.Move(tex.Path, newPath); err != nil {
		return "", err
	}
	if err := c.store.ResetMeta(newPath); err != nil {
		return "", err
	}
	return newPath, nil
}

func (c *TextureConverter) importerFor(assetPath string) *unity.TextureImporter {
	return unity.NewTextureImporter(texture.IsNormalMap(assetPath, c.options.NormalMapKeywords))
}

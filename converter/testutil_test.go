package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/binzume/vrmimporter/unity"
)

const (
	mainGUID   = "1111aaaa2222bbbb3333cccc4444dddd"
	normalGUID = "2222aaaa2222bbbb3333cccc4444dddd"
	faceGUID   = "3333aaaa2222bbbb3333cccc4444dddd"
	brokenGUID = "4444aaaa2222bbbb3333cccc4444dddd"
	unusedGUID = "5555aaaa2222bbbb3333cccc4444dddd"
	hairGUID   = "6666aaaa2222bbbb3333cccc4444dddd"
	matAGUID   = "aaaa0000aaaa0000aaaa0000aaaa0000"
	matBGUID   = "bbbb0000bbbb0000bbbb0000bbbb0000"
)

const testMeta = `fileFormatVersion: 2
guid: %s
TextureImporter:
  serializedVersion: 11
  mipmaps:
    enableMipMap: 1
  isReadable: 0
  textureType: 0
`

const testMaterialHeader = `%%YAML 1.1
%%TAG !u! tag:unity3d.com,2011:
--- !u!21 &2100000
Material:
  serializedVersion: 6
  m_ObjectHideFlags: 0
  m_Name: %s
  m_Shader: {fileID: 46, guid: 0000000000000000f000000000000000, type: 0}
  m_ShaderKeywords: 
  m_CustomRenderQueue: -1
  stringTagMap: {}
  m_SavedProperties:
    serializedVersion: 3
    m_TexEnvs:
`

const testTexEnv = `    - %s:
        m_Texture: %s
        m_Scale: {x: 1, y: 1}
        m_Offset: {x: 0, y: 0}
`

func texRef(guid string, refType int) string {
	return fmt.Sprintf("{fileID: 2800000, guid: %s, type: %d}", guid, refType)
}

func testMaterial(name string, slots ...string) []byte {
	s := fmt.Sprintf(testMaterialHeader, name)
	for i := 0; i+1 < len(slots); i += 2 {
		s += fmt.Sprintf(testTexEnv, slots[i], slots[i+1])
	}
	s += "    m_Floats:\n    - _Cutoff: 0.5\n    m_Colors:\n    - _Color: {r: 1, g: 1, b: 1, a: 1}\n"
	return []byte(s)
}

func testBMP(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 16; i++ {
		img.Set(i%4, i/4, c)
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeAsset(t *testing.T, root, assetPath string, data []byte, guid string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(assetPath))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
	if guid == "" {
		return
	}
	if err := os.WriteFile(p+".meta", []byte(fmt.Sprintf(testMeta, guid)), 0644); err != nil {
		t.Fatal(err)
	}
}

// newTestProject creates:
//
//	skin_main.bmp   bound to A._MainTex and B._MainTex
//	skin_normal.bmp bound to B._BumpMap
//	face.asset      bound to A._EmissionMap (native RGBA32)
//	hair.png        bound to A._MetallicGlossMap
//	broken.asset    bound to B._OcclusionMap (DXT5, not decodable)
//	unused.bmp      not bound
func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeAsset(t, root, "Assets/Textures/skin_main.bmp", testBMP(t, color.RGBA{R: 200, A: 255}), mainGUID)
	writeAsset(t, root, "Assets/Textures/skin_normal.bmp", testBMP(t, color.RGBA{R: 128, G: 128, B: 255, A: 255}), normalGUID)
	writeAsset(t, root, "Assets/Textures/unused.bmp", testBMP(t, color.RGBA{G: 50, A: 255}), unusedGUID)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	face, err := unity.NewTexture2D("face", img).Encode()
	if err != nil {
		t.Fatal(err)
	}
	writeAsset(t, root, "Assets/Textures/face.asset", face, faceGUID)
	hair := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	hair.SetNRGBA(0, 0, color.NRGBA{R: 90, G: 60, B: 30, A: 128})
	hair.SetNRGBA(2, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var hairPNG bytes.Buffer
	if err := png.Encode(&hairPNG, hair); err != nil {
		t.Fatal(err)
	}
	writeAsset(t, root, "Assets/Textures/hair.png", hairPNG.Bytes(), hairGUID)
	broken, err := (&unity.Texture2D{Name: "broken", Width: 4, Height: 4, TextureFormat: unity.TextureFormatDXT5, TypelessData: "00"}).Encode()
	if err != nil {
		t.Fatal(err)
	}
	writeAsset(t, root, "Assets/Textures/broken.asset", broken, brokenGUID)

	writeAsset(t, root, "Assets/Materials/A.mat", testMaterial("A",
		"_MainTex", texRef(mainGUID, 3),
		"_EmissionMap", texRef(faceGUID, 2),
		"_MetallicGlossMap", texRef(hairGUID, 3),
		"_DetailAlbedoMap", "{fileID: 0}"), matAGUID)
	writeAsset(t, root, "Assets/Materials/B.mat", testMaterial("B",
		"_MainTex", texRef(mainGUID, 3),
		"_BumpMap", texRef(normalGUID, 3),
		"_OcclusionMap", texRef(brokenGUID, 2)), matBGUID)
	return root
}

func openTestProject(t *testing.T, root string) *unity.AssetDatabase {
	t.Helper()
	db, err := unity.OpenProject(root)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func loadTextures(t *testing.T, db *unity.AssetDatabase, paths ...string) []*unity.Texture {
	t.Helper()
	var textures []*unity.Texture
	for _, p := range paths {
		tex, err := db.LoadTexture(p)
		if err != nil {
			t.Fatal(err)
		}
		textures = append(textures, tex)
	}
	return textures
}

func loadMaterials(t *testing.T, db *unity.AssetDatabase, paths ...string) []*unity.Material {
	t.Helper()
	var mats []*unity.Material
	for _, p := range paths {
		m, err := db.LoadMaterial(p)
		if err != nil {
			t.Fatal(err)
		}
		mats = append(mats, m)
	}
	return mats
}

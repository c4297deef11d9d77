package unity

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const testMaterialTemplate = `%%YAML 1.1
%%TAG !u! tag:unity3d.com,2011:
--- !u!21 &2100000
Material:
  serializedVersion: 6
  m_ObjectHideFlags: 0
  m_CorrespondingSourceObject: {fileID: 0}
  m_PrefabInstance: {fileID: 0}
  m_PrefabAsset: {fileID: 0}
  m_Name: %s
  m_Shader: {fileID: 46, guid: 0000000000000000f000000000000000, type: 0}
  m_ShaderKeywords: _NORMALMAP
  m_LightmapFlags: 4
  m_EnableInstancingVariants: 0
  m_DoubleSidedGI: 0
  m_CustomRenderQueue: -1
  stringTagMap: {}
  disabledShaderPasses: []
  m_SavedProperties:
    serializedVersion: 3
    m_TexEnvs:
    - _BumpMap:
        m_Texture: {fileID: 0}
        m_Scale: {x: 1, y: 1}
        m_Offset: {x: 0, y: 0}
    - _MainTex:
        m_Texture: {fileID: 2800000, guid: %s, type: 3}
        m_Scale: {x: 1, y: 1}
        m_Offset: {x: 0, y: 0}
    m_Floats:
    - _Cutoff: 0.5
    m_Colors:
    - _Color: {r: 1, g: 0.5, b: 1, a: 1}
`

const testTextureMeta = `fileFormatVersion: 2
guid: %s
TextureImporter:
  internalIDToNameTable: []
  serializedVersion: 11
  mipmaps:
    enableMipMap: 1
  isReadable: 0
  textureType: 0
`

func testMaterial(name, mainTexGUID string) []byte {
	return []byte(fmt.Sprintf(testMaterialTemplate, name, mainTexGUID))
}

// writeTestAsset writes an asset file and a meta file with the given guid.
func writeTestAsset(t *testing.T, root, assetPath string, data []byte, guid string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(assetPath))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p+".meta", []byte(fmt.Sprintf(testTextureMeta, guid)), 0644); err != nil {
		t.Fatal(err)
	}
}

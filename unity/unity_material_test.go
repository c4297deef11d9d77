package unity

import (
	"strings"
	"testing"
)

const testGUID = "aaaabbbbccccddddeeeeffff00001111"

func TestParseMaterial(t *testing.T) {
	mat, err := ParseMaterial(testMaterial("Body", testGUID))
	if err != nil {
		t.Fatal(err)
	}
	if mat.Name != "Body" || ShaderName(mat.Shader) != "Standard" {
		t.Error("material:", mat.Name, mat.Shader)
	}
	slots := mat.TextureSlots()
	if len(slots) != 2 || slots[0] != SlotBumpMap || slots[1] != SlotMainTex {
		t.Error("slots:", slots)
	}
	if mat.GetTexture(SlotBumpMap) != nil {
		t.Error("empty slot must be nil")
	}
	ref := mat.GetTexture(SlotMainTex)
	if ref == nil || ref.GUID != testGUID || ref.FileID != Texture2DFileID || ref.Type != RefTypeImported {
		t.Error("main tex:", ref)
	}
	if c := mat.GetColorProperty("_Color"); c == nil || c.G != 0.5 {
		t.Error("color:", c)
	}
	if v, ok := mat.GetFloatProperty("_Cutoff"); !ok || v != 0.5 {
		t.Error("cutoff:", v)
	}
}

func TestMaterialSetTexture(t *testing.T) {
	mat, err := ParseMaterial(testMaterial("Body", testGUID))
	if err != nil {
		t.Fatal(err)
	}
	newRef := &Ref{FileID: Texture2DFileID, GUID: "0123456789abcdef0123456789abcdef", Type: RefTypeImported}
	mat.SetTexture(SlotMainTex, nil)
	mat.SetTexture(SlotBumpMap, newRef)
	mat.SetTexture(SlotEmissionMap, newRef)
	mat.SetFloat("_Cutoff", 0.25)

	b, err := mat.Encode()
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, keep := range []string{"%TAG !u! tag:unity3d.com,2011:", "--- !u!21 &2100000", "m_CustomRenderQueue: -1", "m_CorrespondingSourceObject: {fileID: 0}", "m_ShaderKeywords: _NORMALMAP"} {
		if !strings.Contains(s, keep) {
			t.Errorf("%q lost:\n%s", keep, s)
		}
	}
	if !strings.Contains(s, "m_Texture: {fileID: 2800000, guid: 0123456789abcdef0123456789abcdef, type: 3}") {
		t.Errorf("texture ref not written in flow style:\n%s", s)
	}

	reloaded, err := ParseMaterial(b)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.GetTexture(SlotMainTex) != nil {
		t.Error("main tex not cleared:", reloaded.GetTexture(SlotMainTex))
	}
	if r := reloaded.GetTexture(SlotBumpMap); r == nil || *r != *newRef {
		t.Error("bump map:", r)
	}
	if r := reloaded.GetTexture(SlotEmissionMap); r == nil || *r != *newRef {
		t.Error("added slot:", r)
	}
	if v, _ := reloaded.GetFloatProperty("_Cutoff"); v != 0.25 {
		t.Error("cutoff:", v)
	}
}

func TestNewMaterial(t *testing.T) {
	mat := NewMaterial(CleanMaterialName("Hair (Instance)"), StandardShader)
	mat.SetColor("_Color", Color{R: 1, G: 0, B: 0, A: 1})
	mat.SetTexture(SlotMainTex, &Ref{FileID: Texture2DFileID, GUID: testGUID, Type: RefTypeNative})
	b, err := mat.Encode()
	if err != nil {
		t.Fatal(err)
	}
	reloaded, err := ParseMaterial(b)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Name != "Hair" {
		t.Error("name:", reloaded.Name)
	}
	if r := reloaded.GetTexture(SlotMainTex); r == nil || r.GUID != testGUID || r.Type != RefTypeNative {
		t.Error("main tex:", r)
	}
	if c := reloaded.GetColorProperty("_Color"); c == nil || c.R != 1 || c.G != 0 {
		t.Error("color:", c)
	}
}

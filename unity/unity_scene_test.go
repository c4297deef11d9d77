package unity

import (
	"reflect"
	"testing"
)

const (
	hairGUID   = "9999aaaa0000bbbb1111cccc2222dddd"
	prefabGUID = "abcdabcdabcdabcdabcdabcdabcdabcd"
	nestedGUID = "dcbadcbadcbadcbadcbadcbadcbadcba"
)

const testPrefab = `%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!1 &100
GameObject:
  m_ObjectHideFlags: 0
  serializedVersion: 6
  m_Component:
  - component: {fileID: 400}
  - component: {fileID: 2300}
  m_Name: Avatar
  m_TagString: Untagged
  m_IsActive: 1
--- !u!23 &2300
MeshRenderer:
  m_ObjectHideFlags: 0
  m_GameObject: {fileID: 100}
  m_Enabled: 1
  m_Materials:
  - {fileID: 2100000, guid: 5555eeee6666ffff7777aaaa8888bbbb, type: 2}
  - {fileID: 10303, guid: 0000000000000000f000000000000000, type: 0}
  - {fileID: 0}
--- !u!1001 &500
PrefabInstance:
  m_ObjectHideFlags: 0
  serializedVersion: 2
  m_SourcePrefab: {fileID: 100100000, guid: dcbadcbadcbadcbadcbadcbadcbadcba, type: 3}
`

const testNestedPrefab = `%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!137 &1370
SkinnedMeshRenderer:
  m_GameObject: {fileID: 100}
  m_Enabled: 1
  m_Materials:
  - {fileID: 2100000, guid: 9999aaaa0000bbbb1111cccc2222dddd, type: 2}
  - {fileID: 2100000, guid: 5555eeee6666ffff7777aaaa8888bbbb, type: 2}
  m_Mesh: {fileID: 4300000, guid: 1234123412341234123412341234abcd, type: 3}
`

func TestLoadScene(t *testing.T) {
	root := t.TempDir()
	writeTestAsset(t, root, "Assets/Avatar.prefab", []byte(testPrefab), prefabGUID)
	writeTestAsset(t, root, "Assets/Nested.prefab", []byte(testNestedPrefab), nestedGUID)
	db, err := OpenProject(root)
	if err != nil {
		t.Fatal(err)
	}

	scene, err := LoadScene(db, db.GetAsset(prefabGUID))
	if err != nil {
		t.Fatal("Cannot open scene.", err)
	}
	if len(scene.Objects) != 1 || scene.Objects[0].Name != "Avatar" {
		t.Error("objects:", scene.Objects)
	}
	if _, ok := scene.GetElement(&scene.Objects[0].Components[1].Ref).(*MeshRenderer); !ok {
		t.Error("component is not a renderer")
	}
	if len(scene.PrefabInstances) != 1 {
		t.Fatal("nested prefab not loaded")
	}
	if len(scene.Renderers()) != 2 {
		t.Error("renderers:", len(scene.Renderers()))
	}

	guids := scene.MaterialGUIDs()
	if want := []string{bodyGUID, hairGUID}; !reflect.DeepEqual(guids, want) {
		t.Error("materials:", guids)
	}
}

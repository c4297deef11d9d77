package unity

import (
	"io"
	"log"
	"sort"
)

// Scene is a loaded .unity or .prefab file.
type Scene struct {
	GUID    string
	Objects []*GameObject

	Elements        map[int64]interface{}
	PrefabInstances map[string]*Scene
}

func (s *Scene) GetElement(ref *Ref) interface{} {
	if ref == nil {
		return nil
	}
	if ref.GUID != "" && ref.GUID != s.GUID {
		if p, ok := s.PrefabInstances[ref.GUID]; ok {
			return p.GetElement(&Ref{FileID: ref.FileID})
		}
		return nil
	}
	return s.Elements[ref.FileID]
}

type GameObject struct {
	Name      string `yaml:"m_Name"`
	IsActive  int    `yaml:"m_IsActive"`
	TagString string `yaml:"m_TagString"`

	Components []*struct {
		Ref Ref `yaml:"component"`
	} `yaml:"m_Component"`
}

type BaseComponent struct {
	ObjectHideFlags int `yaml:"m_ObjectHideFlags"`
	GameObject      Ref `yaml:"m_GameObject"`
}

type Renderer struct {
	BaseComponent `yaml:",inline"`
	Enabled       int    `yaml:"m_Enabled"`
	Materials     []*Ref `yaml:"m_Materials"`
}

type MeshRenderer struct {
	Renderer `yaml:",inline"`
}

type SkinnedMeshRenderer struct {
	Renderer `yaml:",inline"`
	Mesh     *Ref `yaml:"m_Mesh"`
}

type MeshFilter struct {
	BaseComponent `yaml:",inline"`
	Mesh          *Ref `yaml:"m_Mesh"`
}

type PrefabInstance struct {
	SourcePrefab *Ref `yaml:"m_SourcePrefab"`
}

// LoadScene loads objects, renderers and nested prefabs of a scene or prefab asset.
func LoadScene(assets Assets, sceneAsset *Asset) (*Scene, error) {
	return loadScene(assets, sceneAsset, map[string]bool{})
}

func loadScene(assets Assets, sceneAsset *Asset, loading map[string]bool) (*Scene, error) {
	r, err := assets.Open(sceneAsset.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	loading[sceneAsset.GUID] = true
	scene := &Scene{GUID: sceneAsset.GUID, Elements: map[int64]interface{}{}, PrefabInstances: map[string]*Scene{}}
	for _, doc := range ParseYAMLFile(b).Docs {
		var element interface{}
		switch doc.ClassID() {
		case ClassGameObject:
			var a map[string]*GameObject
			err = doc.Decode(&a)
			if obj := a["GameObject"]; obj != nil {
				scene.Objects = append(scene.Objects, obj)
				element = obj
			}
		case ClassMeshRenderer:
			var a map[string]*MeshRenderer
			err = doc.Decode(&a)
			element = a["MeshRenderer"]
		case ClassSkinnedMeshRenderer:
			var a map[string]*SkinnedMeshRenderer
			err = doc.Decode(&a)
			element = a["SkinnedMeshRenderer"]
		case ClassMeshFilter:
			var a map[string]*MeshFilter
			err = doc.Decode(&a)
			element = a["MeshFilter"]
		case ClassPrefabInstance:
			var a map[string]*PrefabInstance
			err = doc.Decode(&a)
			p := a["PrefabInstance"]
			element = p
			if p == nil || !p.SourcePrefab.IsValid() || loading[p.SourcePrefab.GUID] {
				break
			}
			src := assets.GetAsset(p.SourcePrefab.GUID)
			if src == nil {
				log.Println("Missing prefab:", p.SourcePrefab.GUID)
				break
			}
			if s, err := loadScene(assets, src, loading); err == nil {
				scene.PrefabInstances[src.GUID] = s
			} else {
				log.Println("Prefab load error:", src.Path, err)
			}
		default:
			continue
		}
		if err != nil {
			log.Println("Decode error:", sceneAsset.Path, doc.Header, err)
			continue
		}
		if element != nil {
			scene.Elements[doc.FileID] = element
		}
	}
	return scene, nil
}

// Renderers returns renderers of this scene and of nested prefabs.
func (s *Scene) Renderers() []*Renderer {
	var renderers []*Renderer
	for _, e := range s.Elements {
		switch r := e.(type) {
		case *MeshRenderer:
			renderers = append(renderers, &r.Renderer)
		case *SkinnedMeshRenderer:
			renderers = append(renderers, &r.Renderer)
		}
	}
	for _, p := range s.PrefabInstances {
		renderers = append(renderers, p.Renderers()...)
	}
	return renderers
}

// MaterialGUIDs returns the distinct material assets used by renderers.
// Builtin materials and sub-assets of models are skipped.
func (s *Scene) MaterialGUIDs() []string {
	seen := map[string]bool{}
	var guids []string
	for _, r := range s.Renderers() {
		for _, ref := range r.Materials {
			if !ref.IsValid() || IsBuiltin(ref) || ref.FileID != MaterialFileID || seen[ref.GUID] {
				continue
			}
			seen[ref.GUID] = true
			guids = append(guids, ref.GUID)
		}
	}
	sort.Strings(guids)
	return guids
}

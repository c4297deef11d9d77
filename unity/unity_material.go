package unity

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	yaml3 "gopkg.in/yaml.v3"
)

// Common texture slots of builtin shaders.
const (
	SlotMainTex          = "_MainTex"
	SlotBumpMap          = "_BumpMap"
	SlotEmissionMap      = "_EmissionMap"
	SlotOcclusionMap     = "_OcclusionMap"
	SlotMetallicGlossMap = "_MetallicGlossMap"
)

type Material struct {
	Name           string `yaml:"m_Name"`
	Shader         *Ref   `yaml:"m_Shader,flow"`
	ShaderKeywords string `yaml:"m_ShaderKeywords"`

	LightmapFlags            int               `yaml:"m_LightmapFlags"`
	EnableInstancingVariants int               `yaml:"m_EnableInstancingVariants"`
	DoubleSidedGI            int               `yaml:"m_DoubleSidedGI"`
	CustomRenderQueue        int               `yaml:"m_CustomRenderQueue"`
	StringTagMap             map[string]string `yaml:"stringTagMap"`
	DisabledShaderPasses     []string          `yaml:"disabledShaderPasses"`

	SavedProperties struct {
		SerializedVersion int                      `yaml:"serializedVersion"`
		TexEnvs           []map[string]*TextureEnv `yaml:"m_TexEnvs"`
		Floats            []map[string]float32     `yaml:"m_Floats"`
		Colors            []map[string]*Color      `yaml:"m_Colors"`
	} `yaml:"m_SavedProperties"`

	Asset *Asset `yaml:"-"`

	file  *YAMLFile
	doc   *YAMLDoc
	node  *yaml3.Node
	dirty bool
}

type TextureEnv struct {
	Texture *Ref    `yaml:"m_Texture,flow"`
	Scale   Vector2 `yaml:"m_Scale,flow"`
	Offset  Vector2 `yaml:"m_Offset,flow"`
}

type materialDoc struct {
	Material *Material `yaml:"Material"`
}

// NewMaterial returns a material with no properties.
func NewMaterial(name string, shader Ref) *Material {
	m := &Material{
		Name:         name,
		Shader:       &shader,
		StringTagMap: map[string]string{},
	}
	m.SavedProperties.SerializedVersion = 3
	m.file = NewYAMLFile(ClassMaterial, MaterialFileID, nil)
	m.doc = m.file.Docs[0]
	m.node = &yaml3.Node{}
	if err := m.node.Encode(&materialDoc{Material: m}); err != nil {
		panic(err) // plain struct, cannot fail
	}
	return m
}

// ParseMaterial parses a .mat file. Unknown fields are kept and written back by Encode.
func ParseMaterial(data []byte) (*Material, error) {
	file := ParseYAMLFile(data)
	doc := file.Find(ClassMaterial)
	if doc == nil {
		return nil, ErrMaterialNotFound
	}
	var node yaml3.Node
	if err := yaml3.Unmarshal(doc.Body, &node); err != nil {
		return nil, err
	}
	var md materialDoc
	if err := node.Decode(&md); err != nil {
		return nil, err
	}
	if md.Material == nil {
		return nil, ErrMaterialNotFound
	}
	m := md.Material
	m.file = file
	m.doc = doc
	m.node = &node
	return m, nil
}

func (m *Material) Encode() ([]byte, error) {
	var body bytes.Buffer
	enc := yaml3.NewEncoder(&body)
	enc.SetIndent(2)
	if err := enc.Encode(m.node); err != nil {
		return nil, errors.Wrapf(err, "encode material %s", m.Name)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	m.doc.Body = body.Bytes()
	return m.file.Bytes(), nil
}

func (m *Material) IsDirty() bool {
	return m.dirty
}

// TextureSlots returns texture property names in file order.
func (m *Material) TextureSlots() []string {
	var slots []string
	for _, t := range m.SavedProperties.TexEnvs {
		for name := range t {
			slots = append(slots, name)
		}
	}
	return slots
}

func (m *Material) GetTextureProperty(name string) *TextureEnv {
	for _, t := range m.SavedProperties.TexEnvs {
		if tex, ok := t[name]; ok {
			return tex
		}
	}
	return nil
}

// GetTexture returns the texture bound to slot or nil.
func (m *Material) GetTexture(slot string) *Ref {
	if env := m.GetTextureProperty(slot); env != nil && env.Texture.IsValid() {
		return env.Texture
	}
	return nil
}

// SetTexture binds ref to slot. A nil ref clears the slot.
func (m *Material) SetTexture(slot string, ref *Ref) {
	value := Ref{}
	if ref != nil {
		value = *ref
	}
	env := m.GetTextureProperty(slot)
	if env == nil {
		env = &TextureEnv{Scale: Vector2{X: 1, Y: 1}}
		env.Texture = &value
		m.SavedProperties.TexEnvs = append(m.SavedProperties.TexEnvs, map[string]*TextureEnv{slot: env})
		m.setNodeProperty("m_TexEnvs", slot, env)
		return
	}
	env.Texture = &value
	if entry := m.nodeProperty("m_TexEnvs", slot); entry != nil {
		setMappingValue(entry, "m_Texture", flowNode(&value))
	} else {
		m.setNodeProperty("m_TexEnvs", slot, env)
	}
}

func (m *Material) GetColorProperty(name string) *Color {
	for _, t := range m.SavedProperties.Colors {
		if col, ok := t[name]; ok {
			return col
		}
	}
	return nil
}

func (m *Material) SetColor(name string, c Color) {
	if col := m.GetColorProperty(name); col != nil {
		*col = c
	} else {
		m.SavedProperties.Colors = append(m.SavedProperties.Colors, map[string]*Color{name: &c})
	}
	m.setNodeProperty("m_Colors", name, flowNode(&c))
}

func (m *Material) GetFloatProperty(name string) (float32, bool) {
	for _, t := range m.SavedProperties.Floats {
		if col, ok := t[name]; ok {
			return col, true
		}
	}
	return 0, false
}

func (m *Material) SetFloat(name string, v float32) {
	found := false
	for _, t := range m.SavedProperties.Floats {
		if _, ok := t[name]; ok {
			t[name] = v
			found = true
		}
	}
	if !found {
		m.SavedProperties.Floats = append(m.SavedProperties.Floats, map[string]float32{name: v})
	}
	m.setNodeProperty("m_Floats", name, v)
}

// property sequence of m_SavedProperties in the node tree, created when missing.
func (m *Material) propertySeq(section string) *yaml3.Node {
	root := m.node
	if root.Kind == yaml3.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	mat := mappingValue(root, "Material")
	if mat == nil {
		return nil
	}
	props := mappingValue(mat, "m_SavedProperties")
	if props == nil {
		props = &yaml3.Node{Kind: yaml3.MappingNode}
		setMappingValue(mat, "m_SavedProperties", props)
	}
	seq := mappingValue(props, section)
	if seq == nil || seq.Kind != yaml3.SequenceNode {
		seq = &yaml3.Node{Kind: yaml3.SequenceNode}
		setMappingValue(props, section, seq)
	}
	return seq
}

func (m *Material) nodeProperty(section, name string) *yaml3.Node {
	seq := m.propertySeq(section)
	if seq == nil {
		return nil
	}
	for _, item := range seq.Content {
		if v := mappingValue(item, name); v != nil {
			return v
		}
	}
	return nil
}

func (m *Material) setNodeProperty(section, name string, value interface{}) {
	seq := m.propertySeq(section)
	if seq == nil {
		return
	}
	n, ok := value.(*yaml3.Node)
	if !ok {
		n = &yaml3.Node{}
		if err := n.Encode(value); err != nil {
			return
		}
	}
	for _, item := range seq.Content {
		if mappingValue(item, name) != nil {
			setMappingValue(item, name, n)
			return
		}
	}
	item := &yaml3.Node{Kind: yaml3.MappingNode}
	setMappingValue(item, name, n)
	seq.Style &^= yaml3.FlowStyle
	seq.Content = append(seq.Content, item)
}

func flowNode(v interface{}) *yaml3.Node {
	n := &yaml3.Node{}
	_ = n.Encode(v)
	n.Style = yaml3.FlowStyle
	return n
}

func mappingValue(n *yaml3.Node, key string) *yaml3.Node {
	if n == nil || n.Kind != yaml3.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(n *yaml3.Node, key string, value *yaml3.Node) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = value
			return
		}
	}
	n.Content = append(n.Content, &yaml3.Node{Kind: yaml3.ScalarNode, Value: key}, value)
}

// CleanMaterialName strips the suffix of instantiated materials.
func CleanMaterialName(name string) string {
	return strings.Replace(name, " (Instance)", "", -1)
}

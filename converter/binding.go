package converter

import (
	"sort"

	"github.com/binzume/vrmimporter/unity"
	"golang.org/x/text/unicode/norm"
)

// Binding is a material slot that referenced a texture before conversion.
type Binding struct {
	Material *unity.Material
	Slot     string
	Texture  unity.Ref
}

func (b *Binding) SetTexture(ref *unity.Ref) {
	b.Material.SetTexture(b.Slot, ref)
}

// BindingMap groups bindings by texture name. Names are compared in NFC.
type BindingMap map[string][]*Binding

func bindingKey(name string) string {
	return norm.NFC.String(name)
}

func (m BindingMap) Add(textureName string, b *Binding) {
	k := bindingKey(textureName)
	m[k] = append(m[k], b)
}

func (m BindingMap) Get(textureName string) ([]*Binding, bool) {
	bs, ok := m[bindingKey(textureName)]
	return bs, ok
}

func (m BindingMap) Names() []string {
	var names []string
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m BindingMap) Len() int {
	n := 0
	for _, bs := range m {
		n += len(bs)
	}
	return n
}

// Summary lists "material.slot" per texture name.
func (m BindingMap) Summary() map[string][]string {
	s := map[string][]string{}
	for k, bs := range m {
		for _, b := range bs {
			s[k] = append(s[k], b.Material.Name+"."+b.Slot)
		}
	}
	return s
}

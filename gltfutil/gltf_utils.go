package gltfutil

import (
	"bytes"
	"encoding/base64"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// EncodeBinary encodes doc as a GLB buffer.
func EncodeBinary(doc *gltf.Document) ([]byte, error) {
	var buf bytes.Buffer
	e := gltf.NewEncoder(&buf)
	e.AsBinary = true
	if err := e.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mimeTypeOf(uri string) string {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return ""
}

// ImageData returns the encoded bytes and mime type of an embedded image.
func ImageData(doc *gltf.Document, index uint32) ([]byte, string, error) {
	if int(index) >= len(doc.Images) {
		return nil, "", errors.Errorf("image %d not found", index)
	}
	img := doc.Images[index]
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		data := doc.Buffers[bv.Buffer].Data
		if int(bv.ByteOffset+bv.ByteLength) > len(data) {
			return nil, "", errors.Errorf("image %d: buffer view out of range", index)
		}
		return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], img.MimeType, nil
	}
	if strings.HasPrefix(img.URI, "data:") {
		p := strings.SplitN(img.URI[5:], ",", 2)
		if len(p) != 2 || !strings.HasSuffix(p[0], ";base64") {
			return nil, "", errors.Errorf("image %d: unsupported data uri", index)
		}
		b, err := base64.StdEncoding.DecodeString(p[1])
		return b, strings.TrimSuffix(p[0], ";base64"), err
	}
	return nil, "", errors.Errorf("image %d: external image %q", index, img.URI)
}

// TextureImage returns the image bytes of a texture.
func TextureImage(doc *gltf.Document, texture uint32) ([]byte, string, error) {
	if int(texture) >= len(doc.Textures) || doc.Textures[texture].Source == nil {
		return nil, "", errors.Errorf("texture %d has no source", texture)
	}
	return ImageData(doc, *doc.Textures[texture].Source)
}

// ToSingleFile embeds external images into the binary buffer.
func ToSingleFile(doc *gltf.Document, srcDir string) error {
	for _, b := range doc.Buffers {
		b.URI = ""
	}
	for _, m := range doc.Images {
		if m.BufferView == nil && m.URI != "" && !strings.HasPrefix(m.URI, "data:") {
			buf, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(m.URI)))
			if err != nil {
				log.Print(err)
				continue
			}
			if m.MimeType == "" {
				m.MimeType = mimeTypeOf(m.URI)
				if m.MimeType == "" {
					m.MimeType = "image/png"
				}
			}
			m.BufferView = gltf.Index(modeler.WriteBufferView(doc, gltf.TargetNone, buf))
			m.URI = ""
		}
	}
	if len(doc.Buffers) > 0 {
		doc.Buffers[0].ByteLength = uint32(len(doc.Buffers[0].Data))
	}
	return nil
}

// ExtractMesh copies positions, normals, uvs and indices of a mesh into a new document.
func ExtractMesh(src *gltf.Document, index uint32) (*gltf.Document, error) {
	if int(index) >= len(src.Meshes) {
		return nil, errors.Errorf("mesh %d not found", index)
	}
	mesh := src.Meshes[index]
	doc := gltf.NewDocument()
	dst := &gltf.Mesh{Name: mesh.Name}
	for i, p := range mesh.Primitives {
		a, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		pos, err := modeler.ReadPosition(src, src.Accessors[a], [][3]float32{})
		if err != nil {
			return nil, errors.Wrapf(err, "%s[%d] POSITION", mesh.Name, i)
		}
		prim := &gltf.Primitive{
			Mode:       p.Mode,
			Attributes: map[string]uint32{"POSITION": modeler.WritePosition(doc, pos)},
		}
		if a, ok := p.Attributes["NORMAL"]; ok {
			n, err := modeler.ReadNormal(src, src.Accessors[a], [][3]float32{})
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d] NORMAL", mesh.Name, i)
			}
			prim.Attributes["NORMAL"] = modeler.WriteNormal(doc, n)
		}
		if a, ok := p.Attributes["TEXCOORD_0"]; ok {
			uv, err := modeler.ReadTextureCoord(src, src.Accessors[a], [][2]float32{})
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d] TEXCOORD_0", mesh.Name, i)
			}
			prim.Attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uv)
		}
		if p.Indices != nil {
			indices, err := modeler.ReadIndices(src, src.Accessors[*p.Indices], []uint32{})
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d] indices", mesh.Name, i)
			}
			prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
		}
		dst.Primitives = append(dst.Primitives, prim)
	}
	doc.Meshes = append(doc.Meshes, dst)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(0)})
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	for _, b := range doc.Buffers {
		b.ByteLength = uint32(len(b.Data))
	}
	return doc, nil
}

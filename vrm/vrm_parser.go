package vrm

import (
	"bytes"
	"io"

	"github.com/qmuntal/gltf"
)

// Parse vrm data
func Parse(r io.Reader) (*Document, error) {
	var doc gltf.Document
	if err := gltf.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return (*Document)(&doc), nil
}

func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// Load vrm file. External resources are resolved relative to the file.
func Load(path string) (*Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return (*Document)(doc), nil
}

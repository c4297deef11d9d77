package vrm

import (
	"bytes"
	"io"

	"github.com/qmuntal/gltf"
)

// Write vrm as binary glTF.
func Write(doc *Document, w io.Writer) error {
	e := gltf.NewEncoder(w)
	e.AsBinary = true
	return e.Encode((*gltf.Document)(doc))
}

func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package converter

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/binzume/vrmimporter/gltfutil"
	"github.com/binzume/vrmimporter/vrm"
)

// ImportVRM loads a model, exports it to a GLB buffer, loads the buffer back
// and writes it to output. The reloaded document is returned.
func ImportVRM(input, output string) (*vrm.Document, error) {
	src, err := vrm.Load(input)
	if err != nil {
		return nil, errors.Wrap(err, input)
	}
	if strings.ToLower(filepath.Ext(input)) == ".gltf" {
		if err := gltfutil.ToSingleFile((*gltf.Document)(src), filepath.Dir(input)); err != nil {
			return nil, err
		}
	}
	logMeta(src)

	exported, err := vrm.Encode(src)
	if err != nil {
		return nil, errors.Wrap(err, "export")
	}
	doc, err := vrm.ParseBytes(exported)
	if err != nil {
		return nil, errors.Wrap(err, "reload exported model")
	}

	if output != "" {
		if err := os.WriteFile(output, exported, 0644); err != nil {
			return nil, err
		}
		abs, _ := filepath.Abs(output)
		log.Println("Saved:", abs)
	}
	return doc, nil
}

func logMeta(doc *vrm.Document) {
	meta, err := doc.Meta()
	if err != nil {
		log.Println("Meta:", err)
		return
	}
	log.Print("Title: ", meta.Title)
	log.Print("Author: ", meta.Author())
	log.Print("Version: ", meta.Version)
	log.Print("VRM: ", meta.SpecVersion)
}

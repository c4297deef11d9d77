package vrm

// https://vrm.dev/
// https://github.com/vrm-c/vrm-specification

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

const (
	ExtensionName   = "VRM"      // VRM 0.x
	ExtensionName10 = "VRMC_vrm" // VRM 1.0
)

var ErrNotVRM = errors.New("VRM extension not found")

type Document gltf.Document

// Metadata is the subset of the avatar meta shared by VRM 0.x and 1.0.
type Metadata struct {
	SpecVersion string
	Title       string
	Version     string
	Authors     []string
	License     string
}

func (m *Metadata) Author() string {
	if len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0]
}

func (m *Metadata) String() string {
	return fmt.Sprintf("%s %s by %v (VRM %s)", m.Title, m.Version, m.Authors, m.SpecVersion)
}

type vrm0Ext struct {
	Meta struct {
		Title       string `json:"title"`
		Version     string `json:"version"`
		Author      string `json:"author"`
		LicenseName string `json:"licenseName"`
	} `json:"meta"`
	SpecVersion string `json:"specVersion"`
}

type vrm1Ext struct {
	SpecVersion string `json:"specVersion"`
	Meta        struct {
		Name       string   `json:"name"`
		Version    string   `json:"version"`
		Authors    []string `json:"authors"`
		LicenseURL string   `json:"licenseUrl"`
	} `json:"meta"`
}

func (doc *Document) IsExtentionUsed(extname string) bool {
	for _, ex := range doc.ExtensionsUsed {
		if ex == extname {
			return true
		}
	}
	return false
}

func (doc *Document) extension(name string, dst interface{}) (bool, error) {
	v, ok := doc.Extensions[name]
	if !ok {
		return false, nil
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return true, err
		}
		raw = b
	}
	return true, json.Unmarshal(raw, dst)
}

// Meta returns the avatar meta of VRM 0.x or 1.0.
func (doc *Document) Meta() (*Metadata, error) {
	var v1 vrm1Ext
	if ok, err := doc.extension(ExtensionName10, &v1); err != nil {
		return nil, errors.Wrap(err, ExtensionName10)
	} else if ok {
		if v1.SpecVersion == "" {
			v1.SpecVersion = "1.0"
		}
		return &Metadata{
			SpecVersion: v1.SpecVersion,
			Title:       v1.Meta.Name,
			Version:     v1.Meta.Version,
			Authors:     v1.Meta.Authors,
			License:     v1.Meta.LicenseURL,
		}, nil
	}
	var v0 vrm0Ext
	if ok, err := doc.extension(ExtensionName, &v0); err != nil {
		return nil, errors.Wrap(err, ExtensionName)
	} else if ok {
		if v0.SpecVersion == "" {
			v0.SpecVersion = "0.0"
		}
		meta := &Metadata{
			SpecVersion: v0.SpecVersion,
			Title:       v0.Meta.Title,
			Version:     v0.Meta.Version,
			License:     v0.Meta.LicenseName,
		}
		if v0.Meta.Author != "" {
			meta.Authors = []string{v0.Meta.Author}
		}
		return meta, nil
	}
	return nil, ErrNotVRM
}

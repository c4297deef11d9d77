package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/binzume/vrmimporter/converter"
	"github.com/binzume/vrmimporter/unity"
)

func openProject(root, confFile string) (*unity.AssetDatabase, *converter.Config, error) {
	db, err := unity.OpenProject(root)
	if err != nil {
		return nil, nil, err
	}
	conf, err := converter.FindConfig(confFile, root)
	if err != nil {
		return nil, nil, err
	}
	return db, conf, nil
}

// confirm asks a y/N question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer) func(string) bool {
	return func(message string) bool {
		fmt.Fprintf(w, "%s [y/N]: ", message)
		line, _ := bufio.NewReader(r).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func findTextures(db *unity.AssetDatabase, patterns []string) ([]*unity.Texture, error) {
	seen := map[string]bool{}
	var textures []*unity.Texture
	for _, pattern := range patterns {
		assets, err := db.FindAssets(pattern)
		if err != nil {
			return nil, errors.Wrap(err, pattern)
		}
		for _, a := range assets {
			if seen[a.GUID] || db.IsFolder(a.Path) {
				continue
			}
			tex, err := db.LoadTexture(a.Path)
			if errors.Cause(err) == unity.ErrNotTexture {
				continue
			} else if err != nil {
				return nil, err
			}
			seen[a.GUID] = true
			textures = append(textures, tex)
		}
	}
	return textures, nil
}

func findMaterials(db *unity.AssetDatabase, pattern, prefab string) ([]*unity.Material, error) {
	seen := map[*unity.Material]bool{}
	var materials []*unity.Material
	add := func(m *unity.Material) {
		if !seen[m] {
			seen[m] = true
			materials = append(materials, m)
		}
	}
	if pattern != "" {
		assets, err := db.FindAssets(pattern)
		if err != nil {
			return nil, errors.Wrap(err, pattern)
		}
		for _, a := range assets {
			if strings.ToLower(path.Ext(a.Path)) != ".mat" {
				continue
			}
			m, err := db.LoadMaterial(a.Path)
			if err != nil {
				log.Println("Material load error:", err)
				continue
			}
			add(m)
		}
	}
	if prefab != "" {
		asset := db.GetAssetByPath(prefab)
		if asset == nil {
			return nil, errors.Wrap(unity.ErrAssetNotFound, prefab)
		}
		scene, err := unity.LoadScene(db, asset)
		if err != nil {
			return nil, err
		}
		for _, guid := range scene.MaterialGUIDs() {
			m, err := db.LoadMaterialByGUID(guid)
			if err != nil {
				log.Println("Material load error:", err)
				continue
			}
			add(m)
		}
	}
	return materials, nil
}

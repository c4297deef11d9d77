package main

import (
	"flag"
	"log"
	"os"

	"github.com/binzume/vrmimporter/converter"
	"github.com/binzume/vrmimporter/texture"
)

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	project := fs.String("project", ".", "unity project root")
	confFile := fs.String("config", "", "config file (default: <project>/"+converter.ConfigFileName+")")
	materials := fs.String("materials", "", "materials to update (glob)")
	prefab := fs.String("prefab", "", "update materials used by this prefab or scene")
	yes := fs.Bool("y", false, "do not ask for confirmation")
	verbose := fs.Bool("v", false, "verbose")
	fs.Parse(args)

	db, conf, err := openProject(*project, *confFile)
	if err != nil {
		return err
	}
	textures, err := findTextures(db, fs.Args())
	if err != nil {
		return err
	}
	if len(textures) == 0 {
		log.Println("No textures.")
		return nil
	}
	mats, err := findMaterials(db, *materials, *prefab)
	if err != nil {
		return err
	}
	log.Printf("Textures: %d, Materials: %d", len(textures), len(mats))

	opt := conf.TextureConvertOption()
	opt.Verbose = opt.Verbose || *verbose
	if !*yes {
		opt.Confirm = confirm(os.Stdin, os.Stderr)
	}
	return converter.NewTextureConverter(db, texture.PNGCodec{}, opt).Convert(textures, mats)
}

package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/binzume/vrmimporter/converter"
	"github.com/binzume/vrmimporter/vrm"
)

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	output := fs.String("o", "", "output file (default: vrm10.vrm)")
	project := fs.String("project", ".", "unity project root")
	confFile := fs.String("config", "", "config file")
	archive := fs.String("archive", "", "archive the imported model into this project folder")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("model file required")
	}

	conf := converter.DefaultConfig()
	if *archive != "" || *confFile != "" {
		var err error
		if conf, err = converter.FindConfig(*confFile, *project); err != nil {
			return err
		}
	}
	if *output == "" {
		*output = conf.ImportOutput
	}
	doc, err := converter.ImportVRM(fs.Arg(0), *output)
	if err != nil {
		return err
	}
	if *archive == "" {
		return nil
	}
	db, _, err := openProject(*project, *confFile)
	if err != nil {
		return err
	}
	return converter.NewArchiver(db, conf.ArchiveOption()).Archive(doc, *archive)
}

func runDumpSkin(args []string) error {
	fs := flag.NewFlagSet("dumpskin", flag.ExitOnError)
	skin := fs.Int("skin", 0, "skin index")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("model file required")
	}
	doc, err := vrm.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	mats, err := doc.InverseBindMatrices(*skin)
	if err != nil {
		return err
	}
	fmt.Print(vrm.FormatMatrices(mats))
	return nil
}

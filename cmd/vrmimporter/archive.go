package main

import (
	"flag"

	"github.com/pkg/errors"

	"github.com/binzume/vrmimporter/converter"
	"github.com/binzume/vrmimporter/vrm"
)

func runArchive(args []string) error {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	project := fs.String("project", ".", "unity project root")
	confFile := fs.String("config", "", "config file")
	dir := fs.String("dir", "Assets", "archive folder")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("model file required")
	}

	db, conf, err := openProject(*project, *confFile)
	if err != nil {
		return err
	}
	doc, err := vrm.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	return converter.NewArchiver(db, conf.ArchiveOption()).Archive(doc, *dir)
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/binzume/vrmimporter/converter"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands = []*command{
	{"convert", "[-project dir] [-materials glob] [-prefab path] [-y] texture-glob...", runConvert},
	{"archive", "[-project dir] [-dir Assets/...] model.vrm", runArchive},
	{"import", "[-o vrm10.vrm] [-project dir -archive Assets/...] model.vrm", runImport},
	{"dumpskin", "[-skin 0] model.vrm", runDumpSkin},
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s %s %s\n", os.Args[0], c.name, c.usage)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		err := c.run(os.Args[2:])
		if errors.Cause(err) == converter.ErrCanceled {
			log.Println("Canceled.")
			return
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}
	usage()
	os.Exit(2)
}

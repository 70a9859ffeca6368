package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jcbreger/rjvm/pkg/classpath"
	"github.com/jcbreger/rjvm/pkg/vm"
)

func main() {
	cp := flag.String("cp", ".", "classpath: colon-separated directories and archives")
	maxDepth := flag.Int("Xss", 0, "maximum call-frame depth before a stack overflow (0 selects the default)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rjvm -cp <classpath> <main-class> [args...]\n")
		os.Exit(1)
	}
	mainClass, programArgs := args[0], args[1:]

	path := classpath.New(nil)
	if err := path.Push(*cp); err != nil {
		fmt.Fprintf(os.Stderr, "rjvm: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New(path, nil, *maxDepth)
	if err := machine.RunMain(mainClass, programArgs); err != nil {
		fmt.Fprintf(os.Stderr, "rjvm: %v\n", err)
		os.Exit(1)
	}
}

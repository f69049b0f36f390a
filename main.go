package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/0xPolygonHermez/zisk-sub000/internal/asmgen"
)

const versionString = "ziskasm 0.1.0"

func main() {
	var policyFlag = flag.String("policy", "fast", "generation policy: fast, minimal-trace, rom-histogram, main-trace, chunks")
	var outputFlag = flag.String("o", "", "output assembly filename (default: <input>.s)")
	var outputLongFlag = flag.String("output", "", "output assembly filename (default: <input>.s)")
	var verboseFlag = flag.Bool("v", false, "verbose mode (show pipeline stage progress)")
	var verboseLongFlag = flag.Bool("verbose", false, "verbose mode (show pipeline stage progress)")
	var watchFlag = flag.Bool("watch", false, "watch mode: re-transpile whenever the input ELF changes")
	var versionFlag = flag.Bool("version", false, "print version information and exit")
	var versionShortFlag = flag.Bool("V", false, "print version information and exit")
	flag.Parse()

	if *versionFlag || *versionShortFlag {
		fmt.Println(versionString)
		os.Exit(0)
	}

	policy, err := asmgen.ParsePolicy(*policyFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outputPath := *outputFlag
	if *outputLongFlag != "" {
		outputPath = *outputLongFlag
	}

	ctx := &CommandContext{
		Args:       flag.Args(),
		Policy:     policy,
		Verbose:    *verboseFlag || *verboseLongFlag,
		Watch:      *watchFlag,
		OutputPath: outputPath,
	}

	if err := RunCLI(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

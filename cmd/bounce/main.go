package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	daw "github.com/AivinJoy/haven-daw"
)

func main() {
	outFile := flag.String("o", "", "Output WAV file (default: input_bounce.wav)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bounce [options] project.json\n\nRenders a project manifest to a 44.1kHz/16-bit stereo WAV file.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bounce session.json\n")
		fmt.Fprintf(os.Stderr, "  bounce -o mix.wav session.json\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	inputPath := flag.Arg(0)
	manifest, err := daw.LoadManifestFromDisk(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outputPath := *outFile
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, ".json") + "_bounce.wav"
	}

	if err := daw.BounceProject(manifest, outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bounced %s -> %s (%d tracks)\n", inputPath, outputPath, len(manifest.Tracks))
}

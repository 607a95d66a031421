package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/havonz/file-split-packer/internal/config"
	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Stderr belongs to the UI, so logs only go to a file.
	if settings.LogFile != "" {
		cleanup, err := logging.Setup(logging.Config{Path: settings.LogFile, Debug: settings.Debug})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

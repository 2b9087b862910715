package main

import (
	"os"

	"github.com/openmailtools/zmigrate/cmd/zmigrate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

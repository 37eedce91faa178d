package main

import (
	"os"

	"github.com/branchnm/cutplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/andremarcal/draftsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

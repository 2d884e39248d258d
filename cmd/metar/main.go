package main

import (
	"os"

	"github.com/couchcryptid/metar-flight-category/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/pfrederiksen/legislator-ages/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

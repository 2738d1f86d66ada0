package main

import (
	"os"

	"github.com/fse-compliance/internal/delivery/cli"
)

func main() {
	os.Exit(cli.Execute())
}

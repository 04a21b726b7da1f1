package main

import (
	"os"

	"github.com/dgallion1/wirecheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

package main

import (
	"os"

	"github.com/mamadbah2/decentfoods/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

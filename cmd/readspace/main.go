package main

import (
	"os"

	"github.com/okatev/readspace/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
